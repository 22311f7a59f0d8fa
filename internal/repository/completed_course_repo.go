package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satwikShresth/OpenMario-sub003/internal/model"
)

// CompletedCourseRepository 已修课程数据访问接口
type CompletedCourseRepository interface {
	ListCourseIDs(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, courseID string) error
	Remove(ctx context.Context, userID, courseID string) error
}

type completedCourseRepo struct {
	db *gorm.DB
}

// NewCompletedCourseRepo 创建 CompletedCourseRepository 实例
func NewCompletedCourseRepo(db *gorm.DB) CompletedCourseRepository {
	return &completedCourseRepo{db: db}
}

func (r *completedCourseRepo) ListCourseIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.CompletedCourse{}).
		Where("user_id = ?", userID).
		Order("course_id ASC").
		Pluck("course_id", &ids).Error
	return ids, err
}

// Add 重复标记为幂等操作
func (r *completedCourseRepo) Add(ctx context.Context, userID, courseID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CompletedCourse{UserID: userID, CourseID: courseID}).Error
}

func (r *completedCourseRepo) Remove(ctx context.Context, userID, courseID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&model.CompletedCourse{}).Error
}
