// Package conflict 检测学生学期计划中的排课问题：重复选课、时间重叠、
// 缺少同修课、与不可用时间冲突、先修课未满足。
package conflict

import "github.com/satwikShresth/OpenMario-sub003/internal/requisite"

// Type 冲突类型
type Type string

const (
	TypeDuplicate           Type = "duplicate"
	TypeOverlap             Type = "overlap"
	TypeMissingCorequisite  Type = "missing-corequisite"
	TypeMissingPrerequisite Type = "missing-prerequisite"
	TypeUnavailableOverlap  Type = "unavailable-overlap"
)

// ParseType 校验并转换冲突类型字符串
func ParseType(s string) (Type, bool) {
	switch t := Type(s); t {
	case TypeDuplicate, TypeOverlap, TypeMissingCorequisite, TypeMissingPrerequisite, TypeUnavailableOverlap:
		return t, true
	}
	return "", false
}

// 计划条目类型
const (
	PlacementCourse      = "course"
	PlacementExam        = "exam"
	PlacementUnavailable = "unavailable"
)

// Placement 计划中的一个条目，检测器只读
// Days 为原始 JSON 数组文本；StartTime/EndTime 为 HH:MM，空串表示缺失
type Placement struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	CourseID  string `json:"course_id"`
	CRN       string `json:"crn"`
	Title     string `json:"title"`
	Term      string `json:"term"`
	Year      int    `json:"year"`
	Days      string `json:"days"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Snapshot 一次检测使用的不可变输入
type Snapshot struct {
	Placements         []Placement `json:"placements"`
	CompletedCourseIDs []string    `json:"completed_course_ids"`
}

// CourseLink 冲突明细中引用的课程
type CourseLink struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Detail 冲突明细
type Detail struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	IsGroup bool                 `json:"is_group,omitempty"`
	Course  *requisite.CourseRef `json:"course,omitempty"`
	Courses []CourseLink         `json:"courses,omitempty"`
}

// Conflict 一条冲突记录
// ID 由冲突类型与参与者 ID 决定，计划不变时重复计算得到相同 ID
type Conflict struct {
	ID         string   `json:"id"`
	CourseID   string   `json:"course_id"`
	CourseName string   `json:"course_name"`
	Type       Type     `json:"type"`
	Term       string   `json:"term"`
	Year       int      `json:"year"`
	Details    []Detail `json:"details"`
}
