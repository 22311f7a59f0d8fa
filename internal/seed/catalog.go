// Package seed 把课程目录与先修关系批量写入关系图存储。
//
// 目录以 JSON 文件描述；PostgreSQL 走 pgx 批量管道，SQLite 走 gorm 事务。
// 重复导入是幂等的：课程按 course_id 覆盖，目录中出现的目标课程的关系整体替换。
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/satwikShresth/OpenMario-sub003/internal/model"
)

var (
	ErrEmptyCatalog   = errors.New("目录为空")
	ErrInvalidCatalog = errors.New("目录数据无效")
)

// Course 目录中的一门课程
type Course struct {
	ID           string   `json:"id"`
	SubjectID    string   `json:"subject_id"`
	CourseNumber string   `json:"course_number"`
	Title        string   `json:"title"`
	Credits      *float64 `json:"credits,omitempty"`
	Description  *string  `json:"description,omitempty"`
}

// Relation 目录中的一条关系边
// Type 取 prerequisite / corequisite（大小写不敏感）
type Relation struct {
	Source            *string `json:"source"`
	Target            string  `json:"target"`
	Type              string  `json:"type"`
	GroupID           string  `json:"group_id"`
	MinimumGrade      string  `json:"minimum_grade"`
	CanTakeConcurrent bool    `json:"can_take_concurrent"`
}

// Catalog 一次导入的完整目录
type Catalog struct {
	Courses   []Course   `json:"courses"`
	Relations []Relation `json:"relations"`
}

// Result 导入结果统计
type Result struct {
	Courses   int `json:"courses"`
	Relations int `json:"relations"`
}

// Decode 读取并校验 JSON 目录
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate 检查课程 ID 唯一、关系类型合法、关系目标在目录内
// 源课程允许为空或不在目录内（对应已下架课程的占位边）
func (c *Catalog) Validate() error {
	if len(c.Courses) == 0 {
		return ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(c.Courses))
	for i, course := range c.Courses {
		if course.ID == "" || course.SubjectID == "" || course.CourseNumber == "" {
			return fmt.Errorf("%w: 第 %d 门课程缺少 id/subject_id/course_number", ErrInvalidCatalog, i+1)
		}
		if _, dup := seen[course.ID]; dup {
			return fmt.Errorf("%w: 课程 %s 重复", ErrInvalidCatalog, course.ID)
		}
		seen[course.ID] = struct{}{}
	}

	for i, rel := range c.Relations {
		if _, ok := relationType(rel.Type); !ok {
			return fmt.Errorf("%w: 第 %d 条关系类型 %q 无效", ErrInvalidCatalog, i+1, rel.Type)
		}
		if _, ok := seen[rel.Target]; !ok {
			return fmt.Errorf("%w: 第 %d 条关系目标 %q 不在目录中", ErrInvalidCatalog, i+1, rel.Target)
		}
	}
	return nil
}

// Targets 目录中出现的关系目标课程，按首次出现顺序
func (c *Catalog) Targets() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, rel := range c.Relations {
		if _, ok := seen[rel.Target]; ok {
			continue
		}
		seen[rel.Target] = struct{}{}
		out = append(out, rel.Target)
	}
	return out
}

func relationType(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case model.RelationPrerequisite:
		return model.RelationPrerequisite, true
	case model.RelationCorequisite:
		return model.RelationCorequisite, true
	default:
		return "", false
	}
}

func (c Course) toModel() model.Course {
	return model.Course{
		CourseID:     c.ID,
		SubjectID:    c.SubjectID,
		CourseNumber: c.CourseNumber,
		Title:        c.Title,
		Credits:      c.Credits,
		Description:  c.Description,
	}
}

func (r Relation) toModel() model.CourseRelation {
	typ, _ := relationType(r.Type)
	return model.CourseRelation{
		SourceCourseID:    r.Source,
		TargetCourseID:    r.Target,
		RelationType:      typ,
		GroupID:           r.GroupID,
		MinimumGrade:      r.MinimumGrade,
		CanTakeConcurrent: r.CanTakeConcurrent,
	}
}
