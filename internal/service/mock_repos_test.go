package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/satwikShresth/OpenMario-sub003/internal/model"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
	"github.com/satwikShresth/OpenMario-sub003/internal/requisite"
)

var errMockDB = errors.New("mock db error")

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	err     error
}

func newMockCourseRepo(courses ...model.Course) *mockCourseRepo {
	m := &mockCourseRepo{courses: make(map[string]*model.Course)}
	for i := range courses {
		m.courses[courses[i].CourseID] = &courses[i]
	}
	return m
}

func (m *mockCourseRepo) GetByID(_ context.Context, courseID string) (*model.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.courses[courseID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, subjectID string, offset, limit int) ([]model.Course, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []model.Course
	for _, c := range m.courses {
		if subjectID == "" || c.SubjectID == subjectID {
			all = append(all, *c)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockCourseRepo) UpsertBatch(_ context.Context, courses []model.Course) error {
	for i := range courses {
		m.courses[courses[i].CourseID] = &courses[i]
	}
	return nil
}

// ── Mock PlanEventRepository ──

type mockPlanEventRepo struct {
	mu     sync.Mutex
	events []model.PlanEvent
	seq    int
	err    error
}

func newMockPlanEventRepo() *mockPlanEventRepo {
	return &mockPlanEventRepo{}
}

func (m *mockPlanEventRepo) ListByUser(_ context.Context, userID string) ([]model.PlanEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []model.PlanEvent
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockPlanEventRepo) ListByUserAndTerm(_ context.Context, userID, term string, year int) ([]model.PlanEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []model.PlanEvent
	for _, e := range m.events {
		if e.UserID == userID && e.Term == term && e.Year == year {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockPlanEventRepo) GetByID(_ context.Context, userID, eventID string) (*model.PlanEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].PlanEventID == eventID && m.events[i].UserID == userID {
			e := m.events[i]
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanEventRepo) Create(_ context.Context, event *model.PlanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if event.PlanEventID == "" {
		m.seq++
		event.PlanEventID = fmt.Sprintf("evt-%d", m.seq)
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *mockPlanEventRepo) BatchCreate(ctx context.Context, events []model.PlanEvent) error {
	for i := range events {
		if err := m.Create(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockPlanEventRepo) Delete(_ context.Context, userID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.events {
		if m.events[i].PlanEventID == eventID && m.events[i].UserID == userID {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock CompletedCourseRepository ──

type mockCompletedRepo struct {
	mu   sync.Mutex
	byID map[string]map[string]bool
	err  error
}

func newMockCompletedRepo() *mockCompletedRepo {
	return &mockCompletedRepo{byID: make(map[string]map[string]bool)}
}

func (m *mockCompletedRepo) ListCourseIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var ids []string
	for id := range m.byID[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockCompletedRepo) Add(_ context.Context, userID, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.byID[userID] == nil {
		m.byID[userID] = make(map[string]bool)
	}
	m.byID[userID][courseID] = true
	return nil
}

func (m *mockCompletedRepo) Remove(_ context.Context, userID, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.byID[userID], courseID)
	return nil
}

// ── Mock 通知与先修查询 ──

type mockNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *mockNotifier) Notify(userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, userID)
}

func (n *mockNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type mockLookup struct {
	data     map[string]*requisite.CourseRequisites
	err      error
	flushed  int
	flushErr error
}

func newMockLookup() *mockLookup {
	return &mockLookup{data: make(map[string]*requisite.CourseRequisites)}
}

func (m *mockLookup) GetCourseRequisites(_ context.Context, courseID string) (*requisite.CourseRequisites, error) {
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.data[courseID]; ok {
		return r, nil
	}
	return &requisite.CourseRequisites{
		Course:             requisite.CourseRef{ID: courseID},
		PrerequisiteGroups: []requisite.Group{},
		Corequisites:       []requisite.CourseRef{},
	}, nil
}

func (m *mockLookup) Flush(_ context.Context) (int, error) {
	return m.flushed, m.flushErr
}

// newMockRepository 组装聚合仓储
func newMockRepository(courses *mockCourseRepo, events *mockPlanEventRepo, completed *mockCompletedRepo) *repository.Repository {
	return &repository.Repository{
		Course:          courses,
		PlanEvent:       events,
		CompletedCourse: completed,
	}
}
