package conflict

import (
	"fmt"
	"strings"
)

// scheduledCourses 本学期参与检测的课程条目：type=course、学期匹配、标题不含 EXAM
func scheduledCourses(placements []Placement, term string, year int) []Placement {
	out := make([]Placement, 0, len(placements))
	for _, p := range placements {
		if p.Type != PlacementCourse || p.Term != term || p.Year != year {
			continue
		}
		if strings.Contains(strings.ToUpper(p.Title), "EXAM") {
			continue
		}
		out = append(out, p)
	}
	return out
}

// DetectDuplicates 同一标题出现两次及以上视为重复选课
// 标题区分大小写；冲突 ID 取插入顺序中第一个条目的课程 ID
func DetectDuplicates(placements []Placement, term string, year int) []Conflict {
	var titles []string
	byTitle := make(map[string][]Placement)
	for _, p := range scheduledCourses(placements, term, year) {
		if p.Title == "" {
			continue
		}
		if _, ok := byTitle[p.Title]; !ok {
			titles = append(titles, p.Title)
		}
		byTitle[p.Title] = append(byTitle[p.Title], p)
	}

	conflicts := make([]Conflict, 0)
	for _, title := range titles {
		sections := byTitle[title]
		if len(sections) < 2 {
			continue
		}
		details := make([]Detail, 0, len(sections))
		for _, s := range sections {
			details = append(details, Detail{
				ID:   s.CourseID,
				Name: fmt.Sprintf("Section (CRN: %s)", s.CRN),
			})
		}
		conflicts = append(conflicts, Conflict{
			ID:         "duplicate-" + sections[0].CourseID,
			CourseID:   sections[0].CourseID,
			CourseName: title,
			Type:       TypeDuplicate,
			Term:       term,
			Year:       year,
			Details:    details,
		})
	}
	return conflicts
}

// DetectOverlaps 两两比较课程条目的每周时间段
// 每个课程 ID 最多产生一条 overlap（以它作为前者的第一次配对为准）
func DetectOverlaps(placements []Placement, term string, year int) []Conflict {
	courses := scheduledCourses(placements, term, year)
	intervals := make([]interval, len(courses))
	valid := make([]bool, len(courses))
	for i, p := range courses {
		intervals[i], valid[i] = weeklyInterval(p)
	}

	conflicts := make([]Conflict, 0)
	flagged := make(map[string]struct{})
	for i := 0; i < len(courses); i++ {
		if !valid[i] {
			continue
		}
		a := courses[i]
		for j := i + 1; j < len(courses); j++ {
			if !valid[j] {
				continue
			}
			common, ok := intervals[i].overlaps(intervals[j])
			if !ok {
				continue
			}
			if _, done := flagged[a.CourseID]; done {
				break
			}
			b := courses[j]
			flagged[a.CourseID] = struct{}{}
			conflicts = append(conflicts, Conflict{
				ID:         fmt.Sprintf("overlap-%s-%s", a.CourseID, b.CourseID),
				CourseID:   a.CourseID,
				CourseName: a.Title,
				Type:       TypeOverlap,
				Term:       term,
				Year:       year,
				Details: []Detail{{
					ID:   fmt.Sprintf("overlap-%s-%s", a.CRN, b.CRN),
					Name: fmt.Sprintf("Time Overlap: %s on %s", b.Title, strings.Join(common.Names(), ", ")),
				}},
			})
			break
		}
	}
	return conflicts
}

// DetectUnavailableOverlaps 课程与学生标记的不可用时间段冲突
// 每个（课程，时间段）组合最多一条，明细只写第一个共同星期
func DetectUnavailableOverlaps(placements []Placement, term string, year int) []Conflict {
	type block struct {
		p   Placement
		ivl interval
	}
	var blocks []block
	for _, p := range placements {
		if p.Type != PlacementUnavailable || p.Term != term || p.Year != year {
			continue
		}
		if ivl, ok := weeklyInterval(p); ok {
			blocks = append(blocks, block{p: p, ivl: ivl})
		}
	}

	conflicts := make([]Conflict, 0)
	if len(blocks) == 0 {
		return conflicts
	}

	seen := make(map[string]struct{})
	for _, c := range scheduledCourses(placements, term, year) {
		ivl, ok := weeklyInterval(c)
		if !ok {
			continue
		}
		for _, b := range blocks {
			common, ok := ivl.overlaps(b.ivl)
			if !ok {
				continue
			}
			id := fmt.Sprintf("unavailable-%s-%s", c.CourseID, b.p.ID)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			name := fmt.Sprintf("Conflicts with unavailable time on %s: %s-%s",
				common.Names()[0], b.p.StartTime, b.p.EndTime)
			conflicts = append(conflicts, Conflict{
				ID:         id,
				CourseID:   c.CourseID,
				CourseName: c.Title,
				Type:       TypeUnavailableOverlap,
				Term:       term,
				Year:       year,
				Details: []Detail{{
					ID:   "detail-" + b.p.ID,
					Name: name,
				}},
			})
		}
	}
	return conflicts
}
