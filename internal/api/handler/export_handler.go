package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/satwikShresth/OpenMario-sub003/internal/service"
	"github.com/satwikShresth/OpenMario-sub003/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportConflicts 导出冲突报告
// GET /api/v1/export/conflicts?term=Fall&year=2025
func (h *ExportHandler) ExportConflicts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	q, ok := bindTermQuery(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportConflicts(c.Request.Context(), userID, q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoEvents):
		response.NotFound(c, 23001, "该学期计划为空")
	case errors.Is(err, service.ErrConflictDetectFailed):
		response.ServiceUnavailable(c, 22001, "冲突检测暂不可用")
	default:
		response.InternalError(c)
	}
}
