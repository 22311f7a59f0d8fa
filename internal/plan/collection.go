// Package plan 提供学生学期计划的只读快照与变更通知，供冲突计算订阅。
package plan

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/model"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
)

// Collection 单个学生的计划条目集合
// 数据本身在数据库中，Collection 只负责读取快照和分发变更通知
type Collection struct {
	userID    string
	events    repository.PlanEventRepository
	completed repository.CompletedCourseRepository
	logger    *zap.Logger

	mu        sync.Mutex
	listeners map[int]func()
	nextID    int
}

// NewCollection 创建学生计划集合
func NewCollection(userID string, events repository.PlanEventRepository, completed repository.CompletedCourseRepository, logger *zap.Logger) *Collection {
	return &Collection{
		userID:    userID,
		events:    events,
		completed: completed,
		logger:    logger,
		listeners: make(map[int]func()),
	}
}

// Snapshot 读取该学生全部计划条目与已修课程
func (c *Collection) Snapshot(ctx context.Context) (conflict.Snapshot, error) {
	events, err := c.events.ListByUser(ctx, c.userID)
	if err != nil {
		c.logger.Error("读取计划条目失败", zap.String("user_id", c.userID), zap.Error(err))
		return conflict.Snapshot{}, fmt.Errorf("读取计划条目失败: %w", err)
	}

	completed, err := c.completed.ListCourseIDs(ctx, c.userID)
	if err != nil {
		c.logger.Error("读取已修课程失败", zap.String("user_id", c.userID), zap.Error(err))
		return conflict.Snapshot{}, fmt.Errorf("读取已修课程失败: %w", err)
	}

	placements := make([]conflict.Placement, 0, len(events))
	for i := range events {
		placements = append(placements, ToPlacement(&events[i]))
	}

	return conflict.Snapshot{Placements: placements, CompletedCourseIDs: completed}, nil
}

// Subscribe 注册变更回调，返回取消函数
func (c *Collection) Subscribe(fn func()) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Notify 计划变更后调用，通知所有订阅者
func (c *Collection) Notify() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ToPlacement 数据库条目 → 检测器输入
func ToPlacement(e *model.PlanEvent) conflict.Placement {
	return conflict.Placement{
		ID:        e.PlanEventID,
		Type:      e.Type,
		CourseID:  deref(e.CourseID),
		CRN:       deref(e.CRN),
		Title:     e.Title,
		Term:      e.Term,
		Year:      e.Year,
		Days:      string(e.Days),
		StartTime: deref(e.StartTime),
		EndTime:   deref(e.EndTime),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
