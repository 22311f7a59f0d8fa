package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/internal/dto"
	"github.com/satwikShresth/OpenMario-sub003/internal/model"
)

// ── 测试辅助 ──

type planFixture struct {
	svc       PlanService
	courses   *mockCourseRepo
	events    *mockPlanEventRepo
	completed *mockCompletedRepo
	notifier  *mockNotifier
}

func setupTestPlanService() *planFixture {
	fx := &planFixture{
		courses: newMockCourseRepo(
			model.Course{CourseID: "CS-260", SubjectID: "CS", CourseNumber: "260", Title: "Data Structures"},
			model.Course{CourseID: "CS-265", SubjectID: "CS", CourseNumber: "265", Title: "Advanced Programming Tools"},
		),
		events:    newMockPlanEventRepo(),
		completed: newMockCompletedRepo(),
		notifier:  &mockNotifier{},
	}
	repo := newMockRepository(fx.courses, fx.events, fx.completed)
	fx.svc = NewPlanService(repo, fx.notifier, zap.NewNop())
	return fx
}

func courseRequest(courseID string, days []string, start, end string) *dto.CreatePlanEventRequest {
	return &dto.CreatePlanEventRequest{
		Type:      model.PlanEventCourse,
		CourseID:  courseID,
		CRN:       "41234",
		Term:      "Fall",
		Year:      2025,
		Days:      days,
		StartTime: start,
		EndTime:   end,
	}
}

// ── CreateEvent 测试 ──

func TestPlanService_CreateEvent_Course(t *testing.T) {
	fx := setupTestPlanService()

	resp, err := fx.svc.CreateEvent(context.Background(), "user-1",
		courseRequest("CS-260", []string{"W", "monday"}, "10:00", "11:20"))
	if err != nil {
		t.Fatalf("CreateEvent 失败: %v", err)
	}
	if resp.ID == "" {
		t.Error("期望生成条目 ID")
	}
	if resp.Title != "Data Structures" {
		t.Errorf("期望标题取课程目录名称，实际=%q", resp.Title)
	}
	if !reflect.DeepEqual(resp.Days, []string{"Monday", "Wednesday"}) {
		t.Errorf("期望星期规范化为全称并排序，实际=%v", resp.Days)
	}
	if fx.notifier.count() != 1 {
		t.Errorf("期望通知 1 次，实际=%d", fx.notifier.count())
	}

	stored := fx.events.events[0]
	if string(stored.Days) != `["Monday","Wednesday"]` {
		t.Errorf("期望存储 JSON 星期数组，实际=%s", stored.Days)
	}
}

func TestPlanService_CreateEvent_Validation(t *testing.T) {
	fx := setupTestPlanService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  *dto.CreatePlanEventRequest
		want error
	}{
		{"缺少课程编号", courseRequest("", nil, "", ""), ErrCourseIDRequired},
		{"课程不存在", courseRequest("CS-999", nil, "", ""), ErrCourseNotFound},
		{"星期无效", courseRequest("CS-260", []string{"Funday"}, "10:00", "11:00"), ErrInvalidDays},
		{"时间格式无效", courseRequest("CS-260", []string{"M"}, "10am", "11:00"), ErrInvalidTimeFormat},
		{"只有开始时间", courseRequest("CS-260", []string{"M"}, "10:00", ""), ErrInvalidTimeFormat},
		{"结束早于开始", courseRequest("CS-260", []string{"M"}, "11:00", "10:00"), ErrInvalidTimeRange},
		{"不可用时间缺少星期", &dto.CreatePlanEventRequest{
			Type: model.PlanEventUnavailable, Term: "Fall", Year: 2025, StartTime: "09:00", EndTime: "10:00",
		}, ErrIncompleteTimeBlock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.CreateEvent(ctx, "user-1", tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("期望 %v，实际: %v", tc.want, err)
			}
		})
	}
	if fx.notifier.count() != 0 {
		t.Errorf("校验失败不应通知，实际通知 %d 次", fx.notifier.count())
	}
}

func TestPlanService_CreateEvent_RepoError(t *testing.T) {
	fx := setupTestPlanService()
	fx.events.err = errMockDB

	_, err := fx.svc.CreateEvent(context.Background(), "user-1",
		courseRequest("CS-260", []string{"M"}, "10:00", "11:00"))
	if !errors.Is(err, errMockDB) {
		t.Errorf("期望透传数据库错误，实际: %v", err)
	}
	if fx.notifier.count() != 0 {
		t.Error("写入失败不应通知")
	}
}

// ── ListEvents / DeleteEvent 测试 ──

func TestPlanService_ListEventsByTerm(t *testing.T) {
	fx := setupTestPlanService()
	ctx := context.Background()

	_, _ = fx.svc.CreateEvent(ctx, "user-1", courseRequest("CS-260", []string{"M"}, "10:00", "11:00"))
	winter := courseRequest("CS-265", []string{"T"}, "10:00", "11:00")
	winter.Term = "Winter"
	_, _ = fx.svc.CreateEvent(ctx, "user-1", winter)
	_, _ = fx.svc.CreateEvent(ctx, "user-2", courseRequest("CS-265", []string{"M"}, "10:00", "11:00"))

	list, err := fx.svc.ListEvents(ctx, "user-1", &dto.TermQuery{Term: "Fall", Year: 2025})
	if err != nil {
		t.Fatalf("ListEvents 失败: %v", err)
	}
	if len(list) != 1 || list[0].CourseID != "CS-260" {
		t.Errorf("期望只返回本人本学期的 CS-260，实际=%+v", list)
	}
}

func TestPlanService_DeleteEvent(t *testing.T) {
	fx := setupTestPlanService()
	ctx := context.Background()

	created, _ := fx.svc.CreateEvent(ctx, "user-1", courseRequest("CS-260", []string{"M"}, "10:00", "11:00"))

	if err := fx.svc.DeleteEvent(ctx, "user-2", created.ID); !errors.Is(err, ErrPlanEventNotFound) {
		t.Errorf("期望不能删除他人条目，实际: %v", err)
	}
	if err := fx.svc.DeleteEvent(ctx, "user-1", created.ID); err != nil {
		t.Fatalf("DeleteEvent 失败: %v", err)
	}
	if fx.notifier.count() != 2 {
		t.Errorf("期望创建与删除各通知一次，实际=%d", fx.notifier.count())
	}
	if err := fx.svc.DeleteEvent(ctx, "user-1", created.ID); !errors.Is(err, ErrPlanEventNotFound) {
		t.Errorf("期望重复删除返回 ErrPlanEventNotFound，实际: %v", err)
	}
}

// ── ImportICS 测试 ──

func TestPlanService_ImportICS(t *testing.T) {
	fx := setupTestPlanService()

	resp, err := fx.svc.ImportICS(context.Background(), "user-1",
		&dto.TermQuery{Term: "Fall", Year: 2025}, strings.NewReader(testICSContent))
	if err != nil {
		t.Fatalf("ImportICS 失败: %v", err)
	}
	if resp.ImportedCount != 3 {
		t.Errorf("期望导入 3 条，实际=%d", resp.ImportedCount)
	}
	if resp.SkippedCount != 1 {
		t.Errorf("期望跳过 1 条全天事件，实际=%d", resp.SkippedCount)
	}
	if len(fx.events.events) != 3 {
		t.Errorf("期望写入 3 条，实际=%d", len(fx.events.events))
	}
	for _, e := range fx.events.events {
		if e.UserID != "user-1" || e.Term != "Fall" || e.Year != 2025 {
			t.Errorf("期望归属 user-1 Fall 2025，实际=%s %s %d", e.UserID, e.Term, e.Year)
		}
	}
	if fx.notifier.count() != 1 {
		t.Errorf("期望整批导入只通知一次，实际=%d", fx.notifier.count())
	}
}

func TestPlanService_ImportICS_NoEvents(t *testing.T) {
	fx := setupTestPlanService()

	empty := "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//Test//Test//EN\nEND:VCALENDAR"
	_, err := fx.svc.ImportICS(context.Background(), "user-1",
		&dto.TermQuery{Term: "Fall", Year: 2025}, strings.NewReader(empty))
	if !errors.Is(err, ErrICSNoEvents) {
		t.Errorf("期望 ErrICSNoEvents，实际: %v", err)
	}
}

func TestPlanService_ImportICSFromURL_RejectsScheme(t *testing.T) {
	fx := setupTestPlanService()

	_, err := fx.svc.ImportICSFromURL(context.Background(), "user-1",
		&dto.TermQuery{Term: "Fall", Year: 2025}, "file:///etc/passwd")
	if !errors.Is(err, ErrICSFetchFailed) {
		t.Errorf("期望 ErrICSFetchFailed，实际: %v", err)
	}
}

// ── 已修课程测试 ──

func TestPlanService_CompletedCourses(t *testing.T) {
	fx := setupTestPlanService()
	ctx := context.Background()

	if err := fx.svc.MarkCompleted(ctx, "user-1", "CS-999"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望未知课程返回 ErrCourseNotFound，实际: %v", err)
	}
	if err := fx.svc.MarkCompleted(ctx, "user-1", "CS-260"); err != nil {
		t.Fatalf("MarkCompleted 失败: %v", err)
	}
	if err := fx.svc.MarkCompleted(ctx, "user-1", "CS-260"); err != nil {
		t.Fatalf("重复 MarkCompleted 应幂等: %v", err)
	}

	resp, err := fx.svc.ListCompleted(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListCompleted 失败: %v", err)
	}
	if !reflect.DeepEqual(resp.CourseIDs, []string{"CS-260"}) {
		t.Errorf("期望 [CS-260]，实际=%v", resp.CourseIDs)
	}

	if err := fx.svc.UnmarkCompleted(ctx, "user-1", "CS-260"); err != nil {
		t.Fatalf("UnmarkCompleted 失败: %v", err)
	}
	resp, _ = fx.svc.ListCompleted(ctx, "user-1")
	if resp.CourseIDs == nil || len(resp.CourseIDs) != 0 {
		t.Errorf("期望空的非 nil 列表，实际=%#v", resp.CourseIDs)
	}
	if fx.notifier.count() != 3 {
		t.Errorf("期望三次成功写操作各通知一次，实际=%d", fx.notifier.count())
	}
}
