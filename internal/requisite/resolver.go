package requisite

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/satwikShresth/OpenMario-sub003/internal/model"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
	pkgerrors "github.com/satwikShresth/OpenMario-sub003/pkg/errors"
)

// Source 按课程查询先修结构
// Resolver 直接查库，Cache 在其上加一层时效缓存，两者都实现该接口
type Source interface {
	GetCourseRequisites(ctx context.Context, courseID string) (*CourseRequisites, error)
}

// Resolver 从关系图存储查询并组装 CourseRequisites
type Resolver struct {
	courses   repository.CourseRepository
	relations repository.RequisiteRepository
	logger    *zap.Logger
}

// NewResolver 创建 Resolver
func NewResolver(courses repository.CourseRepository, relations repository.RequisiteRepository, logger *zap.Logger) *Resolver {
	return &Resolver{courses: courses, relations: relations, logger: logger}
}

// GetCourseRequisites 查询课程的先修组与同修课
// 课程不存在时返回 pkgerrors.ErrCourseNotFound
func (r *Resolver) GetCourseRequisites(ctx context.Context, courseID string) (*CourseRequisites, error) {
	course, err := r.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrCourseNotFound
		}
		r.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("查询课程 %s 失败: %w", courseID, err)
	}

	rows, err := r.relations.FindPrerequisites(ctx, courseID)
	if err != nil {
		r.logger.Error("查询先修关系失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("查询课程 %s 先修关系失败: %w", courseID, err)
	}

	coreqs, err := r.relations.FindCorequisites(ctx, courseID)
	if err != nil {
		r.logger.Error("查询同修关系失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("查询课程 %s 同修关系失败: %w", courseID, err)
	}

	edges := make([]Edge, 0, len(rows))
	for _, row := range rows {
		edge := Edge{
			GroupID:           row.GroupID,
			MinimumGrade:      row.MinimumGrade,
			CanTakeConcurrent: row.CanTakeConcurrent,
		}
		if row.Course != nil {
			ref := refFromModel(row.Course)
			edge.Course = &ref
		}
		edges = append(edges, edge)
	}

	return &CourseRequisites{
		Course:             refFromModel(course),
		PrerequisiteGroups: GroupPrerequisites(edges),
		Corequisites:       uniqueCorequisites(courseID, coreqs),
	}, nil
}

// uniqueCorequisites 去掉自身与重复课程，保持首次出现顺序
func uniqueCorequisites(self string, courses []model.Course) []CourseRef {
	refs := make([]CourseRef, 0, len(courses))
	seen := map[string]struct{}{self: {}}
	for i := range courses {
		id := courses[i].CourseID
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, refFromModel(&courses[i]))
	}
	return refs
}
