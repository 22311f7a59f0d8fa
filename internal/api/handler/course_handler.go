package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/satwikShresth/OpenMario-sub003/internal/dto"
	"github.com/satwikShresth/OpenMario-sub003/internal/service"
	"github.com/satwikShresth/OpenMario-sub003/pkg/response"
)

// CourseHandler 课程目录与先修关系 Handler
type CourseHandler struct {
	svc service.RequisiteService
}

// NewCourseHandler 创建 CourseHandler 实例
func NewCourseHandler(svc service.RequisiteService) *CourseHandler {
	return &CourseHandler{svc: svc}
}

// ListCourses 课程目录分页
// GET /api/v1/courses?subject_id=CS&page=1&page_size=20
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.ListCoursesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return
	}

	list, total, err := h.svc.ListCourses(c.Request.Context(), &req)
	if err != nil {
		handleRequisiteError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetRequisites 课程的先修分组与同修课
// GET /api/v1/courses/:id/requisites
func (h *CourseHandler) GetRequisites(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程 ID 不能为空")
		return
	}

	resp, err := h.svc.GetCourseRequisites(c.Request.Context(), courseID)
	if err != nil {
		handleRequisiteError(c, err)
		return
	}
	response.OK(c, resp)
}

// FlushCache 清空先修关系缓存
// POST /api/v1/admin/requisites/cache/flush
func (h *CourseHandler) FlushCache(c *gin.Context) {
	resp, err := h.svc.FlushCache(c.Request.Context())
	if err != nil {
		handleRequisiteError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleRequisiteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20001, "课程不存在")
	case errors.Is(err, service.ErrCacheFlushPartial):
		response.ServiceUnavailable(c, 20002, "远端缓存清理失败，本地缓存已清空")
	default:
		response.InternalError(c)
	}
}
