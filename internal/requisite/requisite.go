// Package requisite 把课程关系图中的先修/同修边整理成「组内或、组间且」的结构，
// 并在其上提供带时效的去重缓存。
package requisite

import "github.com/satwikShresth/OpenMario-sub003/internal/model"

// CourseRef 课程引用，来自关系图，只读
type CourseRef struct {
	ID           string `json:"id"`
	SubjectID    string `json:"subject_id"`
	CourseNumber string `json:"course_number"`
	Title        string `json:"title"`
}

// DisplayName 形如 "CS 260"
func (c CourseRef) DisplayName() string {
	return c.SubjectID + " " + c.CourseNumber
}

// Edge 一条先修边
// 同一 GroupID 的边互为替代（或），不同 GroupID 必须同时满足（且）
type Edge struct {
	Course            *CourseRef `json:"course"`
	GroupID           string     `json:"group_id"`
	MinimumGrade      string     `json:"minimum_grade"`
	CanTakeConcurrent bool       `json:"can_take_concurrent"`
}

// Group 共享同一 GroupID 的先修边，非空
type Group struct {
	GroupID string `json:"group_id"`
	Edges   []Edge `json:"edges"`
}

// CourseRequisites 单门课程的先修组与同修课
type CourseRequisites struct {
	Course             CourseRef   `json:"course"`
	PrerequisiteGroups []Group     `json:"prerequisite_groups"`
	Corequisites       []CourseRef `json:"corequisites"`
}

// GroupPrerequisites 按 GroupID 分组，组顺序与组内顺序均按首次出现
// 课程为空的占位边先被丢弃；无边时返回空切片，表示无先修约束
func GroupPrerequisites(edges []Edge) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)

	for _, edge := range edges {
		if edge.Course == nil {
			continue
		}
		i, ok := index[edge.GroupID]
		if !ok {
			i = len(groups)
			index[edge.GroupID] = i
			groups = append(groups, Group{GroupID: edge.GroupID})
		}
		groups[i].Edges = append(groups[i].Edges, edge)
	}

	return groups
}

func refFromModel(c *model.Course) CourseRef {
	return CourseRef{
		ID:           c.CourseID,
		SubjectID:    c.SubjectID,
		CourseNumber: c.CourseNumber,
		Title:        c.Title,
	}
}
