package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const upsertCourse = `INSERT INTO courses (course_id, subject_id, course_number, title, credits, description)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (course_id) DO UPDATE SET subject_id=EXCLUDED.subject_id, course_number=EXCLUDED.course_number,
title=EXCLUDED.title, credits=EXCLUDED.credits, description=EXCLUDED.description, updated_at=NOW()`

const deleteRelationsByTarget = `DELETE FROM course_relations WHERE target_course_id = ANY($1)`

const insertRelation = `INSERT INTO course_relations
(source_course_id, target_course_id, relation_type, group_id, minimum_grade, can_take_concurrent)
VALUES ($1, $2, $3, $4, $5, $6)`

// PgxSeeder 使用 pgx 批量管道写入 PostgreSQL，适合整份目录的大批量导入
type PgxSeeder struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgxSeeder 连接 PostgreSQL 并创建 PgxSeeder，调用方负责 Close
func NewPgxSeeder(ctx context.Context, url string, logger *zap.Logger) (*PgxSeeder, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("创建 pgx 连接池失败: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("连接 PostgreSQL 失败: %w", err)
	}
	return &PgxSeeder{pool: pool, logger: logger}, nil
}

// Close 关闭连接池
func (s *PgxSeeder) Close() {
	s.pool.Close()
}

// Seed 在单个事务内写入目录
// 课程与关系各走一个 Batch，任何一条失败则整体回滚
func (s *PgxSeeder) Seed(ctx context.Context, c *Catalog) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		courses := &pgx.Batch{}
		for _, course := range c.Courses {
			courses.Queue(upsertCourse,
				course.ID, course.SubjectID, course.CourseNumber, course.Title, course.Credits, course.Description)
		}
		if err := tx.SendBatch(ctx, courses).Close(); err != nil {
			return fmt.Errorf("写入课程失败: %w", err)
		}

		if targets := c.Targets(); len(targets) > 0 {
			if _, err := tx.Exec(ctx, deleteRelationsByTarget, targets); err != nil {
				return fmt.Errorf("清理旧关系失败: %w", err)
			}
		}

		if len(c.Relations) == 0 {
			return nil
		}
		relations := &pgx.Batch{}
		for _, rel := range c.Relations {
			m := rel.toModel()
			relations.Queue(insertRelation,
				m.SourceCourseID, m.TargetCourseID, m.RelationType, m.GroupID, m.MinimumGrade, m.CanTakeConcurrent)
		}
		if err := tx.SendBatch(ctx, relations).Close(); err != nil {
			return fmt.Errorf("写入关系失败: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("目录导入失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("目录导入完成（pgx）",
		zap.Int("courses", len(c.Courses)),
		zap.Int("relations", len(c.Relations)),
	)
	return &Result{Courses: len(c.Courses), Relations: len(c.Relations)}, nil
}
