package requisite

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/satwikShresth/OpenMario-sub003/internal/model"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	err     error
}

func (m *mockCourseRepo) GetByID(_ context.Context, courseID string) (*model.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.courses[courseID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockCourseRepo) List(_ context.Context, _ string, _, _ int) ([]model.Course, int64, error) {
	return nil, 0, nil
}

func (m *mockCourseRepo) UpsertBatch(_ context.Context, _ []model.Course) error { return nil }

// ── Mock RequisiteRepository ──

type mockRequisiteRepo struct {
	prereqs map[string][]repository.PrerequisiteRow
	coreqs  map[string][]model.Course
	err     error
}

func (m *mockRequisiteRepo) FindPrerequisites(_ context.Context, courseID string) ([]repository.PrerequisiteRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.prereqs[courseID], nil
}

func (m *mockRequisiteRepo) FindCorequisites(_ context.Context, courseID string) ([]model.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.coreqs[courseID], nil
}

func (m *mockRequisiteRepo) CreateRelations(_ context.Context, _ []model.CourseRelation) error {
	return nil
}

func (m *mockRequisiteRepo) DeleteByTarget(_ context.Context, _ string) error { return nil }

// ── Mock Source（统计回源次数，可阻塞） ──

type countingSource struct {
	calls   atomic.Int32
	gate    chan struct{} // 非空时阻塞直到关闭
	err     error
	results map[string]*CourseRequisites
}

func (s *countingSource) GetCourseRequisites(_ context.Context, courseID string) (*CourseRequisites, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.results[courseID]; ok {
		return r, nil
	}
	return &CourseRequisites{Course: CourseRef{ID: courseID}}, nil
}

// ── Mock Source（遵守 ctx，阻塞直到 gate 关闭或 ctx 结束） ──

type ctxAwareSource struct {
	calls atomic.Int32
	gate  chan struct{}
}

func (s *ctxAwareSource) GetCourseRequisites(ctx context.Context, courseID string) (*CourseRequisites, error) {
	s.calls.Add(1)
	select {
	case <-s.gate:
		return &CourseRequisites{Course: CourseRef{ID: courseID}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ── Mock RemoteStore ──

type memoryRemote struct {
	mu      sync.Mutex
	data    map[string]CourseRequisites
	ttls    map[string]time.Duration
	getErr  error
	flushed int
}

func newMemoryRemote() *memoryRemote {
	return &memoryRemote{data: map[string]CourseRequisites{}, ttls: map[string]time.Duration{}}
}

func (r *memoryRemote) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return false, r.getErr
	}
	v, ok := r.data[key]
	if !ok {
		return false, nil
	}
	*(dst.(*CourseRequisites)) = v
	return true, nil
}

func (r *memoryRemote) SetJSON(_ context.Context, key string, v interface{}, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = *(v.(*CourseRequisites))
	r.ttls[key] = ttl
	return nil
}

func (r *memoryRemote) DeletePrefix(_ context.Context, _ string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.data))
	r.data = map[string]CourseRequisites{}
	r.flushed++
	return n, nil
}
