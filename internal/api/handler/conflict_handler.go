package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/satwikShresth/OpenMario-sub003/internal/service"
	"github.com/satwikShresth/OpenMario-sub003/pkg/response"
)

// ConflictHandler 冲突检测模块 Handler
type ConflictHandler struct {
	svc service.ConflictService
}

// NewConflictHandler 创建 ConflictHandler 实例
func NewConflictHandler(svc service.ConflictService) *ConflictHandler {
	return &ConflictHandler{svc: svc}
}

// GetConflicts 某学期的冲突状态
// GET /api/v1/plans/conflicts?term=Fall&year=2025
func (h *ConflictHandler) GetConflicts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	q, ok := bindTermQuery(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetConflicts(c.Request.Context(), userID, q)
	if err != nil {
		handleConflictError(c, err)
		return
	}
	response.OK(c, resp)
}

// GetCount 某学期的冲突数量
// GET /api/v1/plans/conflicts/count?term=Fall&year=2025
func (h *ConflictHandler) GetCount(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	q, ok := bindTermQuery(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetCount(c.Request.Context(), userID, q)
	if err != nil {
		handleConflictError(c, err)
		return
	}
	response.OK(c, resp)
}

// Recalculate 手动触发重算
// POST /api/v1/plans/conflicts/recalculate  body={"term":"Fall","year":2025}
func (h *ConflictHandler) Recalculate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	q, ok := bindTermBody(c)
	if !ok {
		return
	}

	resp, err := h.svc.Recalculate(c.Request.Context(), userID, q)
	if err != nil {
		handleConflictError(c, err)
		return
	}
	response.OK(c, resp)
}

// Validate 提交前校验，存在阻断冲突时返回 409
// POST /api/v1/plans/validate  body={"term":"Fall","year":2025}
func (h *ConflictHandler) Validate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	q, ok := bindTermBody(c)
	if !ok {
		return
	}

	resp, err := h.svc.Validate(c.Request.Context(), userID, q)
	if err != nil {
		handleConflictError(c, err)
		return
	}
	if !resp.Valid {
		response.Conflict(c, 22009, "计划存在阻断性冲突", resp)
		return
	}
	response.OK(c, resp)
}

func handleConflictError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConflictDetectFailed):
		response.ServiceUnavailable(c, 22001, "冲突检测暂不可用")
	default:
		response.InternalError(c)
	}
}
