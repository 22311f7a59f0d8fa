package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/satwikShresth/OpenMario-sub003/internal/model"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
)

// GormSeeder 通过 repository 层在单个事务内写入，SQLite 与 PostgreSQL 通用
type GormSeeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormSeeder 创建 GormSeeder
func NewGormSeeder(db *gorm.DB, logger *zap.Logger) *GormSeeder {
	return &GormSeeder{db: db, logger: logger}
}

// Seed 写入目录
func (s *GormSeeder) Seed(ctx context.Context, c *Catalog) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewRepository(tx)

		courses := make([]model.Course, 0, len(c.Courses))
		for _, course := range c.Courses {
			courses = append(courses, course.toModel())
		}
		if err := repo.Course.UpsertBatch(ctx, courses); err != nil {
			return fmt.Errorf("写入课程失败: %w", err)
		}

		for _, target := range c.Targets() {
			if err := repo.Requisite.DeleteByTarget(ctx, target); err != nil {
				return fmt.Errorf("清理课程 %s 的旧关系失败: %w", target, err)
			}
		}

		relations := make([]model.CourseRelation, 0, len(c.Relations))
		for _, rel := range c.Relations {
			relations = append(relations, rel.toModel())
		}
		if err := repo.Requisite.CreateRelations(ctx, relations); err != nil {
			return fmt.Errorf("写入关系失败: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("目录导入失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("目录导入完成",
		zap.Int("courses", len(c.Courses)),
		zap.Int("relations", len(c.Relations)),
	)
	return &Result{Courses: len(c.Courses), Relations: len(c.Relations)}, nil
}
