package model

import "time"

// CompletedCourse 学生已修课程 对应表 completed_courses
type CompletedCourse struct {
	UserID    string    `gorm:"primaryKey"                         json:"user_id"`
	CourseID  string    `gorm:"primaryKey"                         json:"course_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (CompletedCourse) TableName() string { return "completed_courses" }
