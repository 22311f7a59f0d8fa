package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satwikShresth/OpenMario-sub003/internal/dto"
	"github.com/satwikShresth/OpenMario-sub003/internal/service"
	"github.com/satwikShresth/OpenMario-sub003/pkg/response"
)

// PlanHandler 学期计划模块 Handler
type PlanHandler struct {
	svc service.PlanService
}

// NewPlanHandler 创建 PlanHandler 实例
func NewPlanHandler(svc service.PlanService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

// ListEvents 本人某学期的计划条目
// GET /api/v1/plans/events?term=Fall&year=2025
func (h *PlanHandler) ListEvents(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	q, ok := bindTermQuery(c)
	if !ok {
		return
	}

	list, err := h.svc.ListEvents(c.Request.Context(), userID, q)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, list)
}

// CreateEvent 新增计划条目
// POST /api/v1/plans/events
func (h *PlanHandler) CreateEvent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePlanEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}

	resp, err := h.svc.CreateEvent(c.Request.Context(), userID, &req)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	response.Created(c, resp)
}

// DeleteEvent 删除计划条目
// DELETE /api/v1/plans/events/:id
func (h *PlanHandler) DeleteEvent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteEvent(c.Request.Context(), userID, c.Param("id")); err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, nil)
}

// ImportICS 导入 ICS 课表
// POST /api/v1/plans/events/import?term=Fall&year=2025
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - URL 导入: application/json, body={"url": "..."}
func (h *PlanHandler) ImportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	q, ok := bindTermQuery(c)
	if !ok {
		return
	}

	// 尝试文件上传方式
	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		resp, err := h.svc.ImportICS(c.Request.Context(), userID, q, file)
		if err != nil {
			handlePlanError(c, err)
			return
		}
		response.Created(c, resp)
		return
	}

	// 尝试 URL 方式
	var req dto.ImportICSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 21000, "请上传 ICS 文件或提供 ICS URL")
		return
	}

	resp, err := h.svc.ImportICSFromURL(c.Request.Context(), userID, q, req.URL)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	response.Created(c, resp)
}

// ListCompleted 已修课程
// GET /api/v1/plans/completed
func (h *PlanHandler) ListCompleted(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.ListCompleted(c.Request.Context(), userID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, resp)
}

// MarkCompleted 标记课程为已修
// PUT /api/v1/plans/completed/:course_id
func (h *PlanHandler) MarkCompleted(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.MarkCompleted(c.Request.Context(), userID, c.Param("course_id")); err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, nil)
}

// UnmarkCompleted 取消已修标记
// DELETE /api/v1/plans/completed/:course_id
func (h *PlanHandler) UnmarkCompleted(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.UnmarkCompleted(c.Request.Context(), userID, c.Param("course_id")); err != nil {
		handlePlanError(c, err)
		return
	}
	response.OK(c, nil)
}

func handlePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanEventNotFound):
		response.NotFound(c, 21001, "计划条目不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20001, "课程不存在")
	case errors.Is(err, service.ErrCourseIDRequired):
		response.BadRequest(c, 21002, "课程条目必须指定 course_id")
	case errors.Is(err, service.ErrInvalidDays):
		response.BadRequest(c, 21003, "星期格式无效")
	case errors.Is(err, service.ErrInvalidTimeFormat):
		response.BadRequest(c, 21004, "时间格式必须为 HH:MM")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 21005, "结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrIncompleteTimeBlock):
		response.BadRequest(c, 21006, "不可用时间段必须指定星期和起止时间")
	case errors.Is(err, service.ErrICSParseFailed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21010, "ICS 格式解析失败", err.Error())
	case errors.Is(err, service.ErrICSFetchFailed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21011, "ICS URL 获取失败", err.Error())
	case errors.Is(err, service.ErrICSNoEvents):
		response.BadRequest(c, 21012, "ICS 中没有可导入的条目")
	default:
		response.InternalError(c)
	}
}
