package conflict

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satwikShresth/OpenMario-sub003/internal/requisite"
)

// plannedCourse 计划中出现的一门课程（按课程 ID 去重）
type plannedCourse struct {
	id    string
	title string
}

// resolved 一门课程的查询结果；查询失败时 reqs 为空
type resolved struct {
	course plannedCourse
	reqs   *requisite.CourseRequisites
}

// distinctCourses 按首次出现顺序去重，忽略没有课程 ID 的条目
func distinctCourses(scheduled []Placement) []plannedCourse {
	seen := make(map[string]struct{}, len(scheduled))
	out := make([]plannedCourse, 0, len(scheduled))
	for _, p := range scheduled {
		if p.CourseID == "" {
			continue
		}
		if _, ok := seen[p.CourseID]; ok {
			continue
		}
		seen[p.CourseID] = struct{}{}
		out = append(out, plannedCourse{id: p.CourseID, title: p.Title})
	}
	return out
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// resolveAll 并发查询每门课程的先修结构，结果顺序与输入一致
// 单门课程失败只记日志，不影响其他课程
func (e *Engine) resolveAll(ctx context.Context, courses []plannedCourse) []resolved {
	results := make([]resolved, len(courses))

	var g errgroup.Group
	g.SetLimit(e.maxConcurrency)
	for i, c := range courses {
		i, c := i, c
		results[i].course = c
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("查询先修关系时发生 panic，跳过该课程",
						zap.String("course_id", c.id),
						zap.Any("panic", r),
					)
				}
			}()
			lookupCtx := ctx
			if e.lookupTimeout > 0 {
				var cancel context.CancelFunc
				lookupCtx, cancel = context.WithTimeout(ctx, e.lookupTimeout)
				defer cancel()
			}
			reqs, err := e.source.GetCourseRequisites(lookupCtx, c.id)
			if err != nil {
				e.logger.Warn("查询先修关系失败，跳过该课程",
					zap.String("course_id", c.id),
					zap.Error(err),
				)
				return nil
			}
			results[i].reqs = reqs
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// missingCorequisites 同修课既未排入本学期也未修过时产生冲突
func missingCorequisites(results []resolved, scheduled, completed map[string]struct{}, term string, year int) []Conflict {
	conflicts := make([]Conflict, 0)
	for _, r := range results {
		if r.reqs == nil || len(r.reqs.Corequisites) == 0 {
			continue
		}
		if _, done := completed[r.course.id]; done {
			continue
		}
		var details []Detail
		for _, co := range r.reqs.Corequisites {
			if _, ok := scheduled[co.ID]; ok {
				continue
			}
			if _, ok := completed[co.ID]; ok {
				continue
			}
			co := co
			details = append(details, Detail{ID: co.ID, Name: co.DisplayName(), Course: &co})
		}
		if len(details) == 0 {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ID:         "missing-coreq-" + r.course.id,
			CourseID:   r.course.id,
			CourseName: r.course.title,
			Type:       TypeMissingCorequisite,
			Term:       term,
			Year:       year,
			Details:    details,
		})
	}
	return conflicts
}

// missingPrerequisites 逐组检查先修课
// 组内任一课程已修过即满足；本学期同时排课且允许同修也算满足
func missingPrerequisites(results []resolved, scheduled, completed map[string]struct{}, term string, year int) []Conflict {
	conflicts := make([]Conflict, 0)
	for _, r := range results {
		if r.reqs == nil || len(r.reqs.PrerequisiteGroups) == 0 {
			continue
		}
		if _, done := completed[r.course.id]; done {
			continue
		}
		var details []Detail
		for idx, group := range r.reqs.PrerequisiteGroups {
			if groupSatisfied(group, scheduled, completed) {
				continue
			}
			details = append(details, groupDetail(idx, group))
		}
		if len(details) == 0 {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ID:         "missing-prereq-" + r.course.id,
			CourseID:   r.course.id,
			CourseName: r.course.title,
			Type:       TypeMissingPrerequisite,
			Term:       term,
			Year:       year,
			Details:    details,
		})
	}
	return conflicts
}

// groupSatisfied 组内任一课程已修完即满足
// 本学期同时排入的先修课只有在该边允许同修（CanTakeConcurrent）时才算满足，
// 不允许同修的先修课必须在更早的学期修完
func groupSatisfied(group requisite.Group, scheduled, completed map[string]struct{}) bool {
	for _, edge := range group.Edges {
		if edge.Course == nil {
			continue
		}
		if _, ok := completed[edge.Course.ID]; ok {
			return true
		}
		if _, ok := scheduled[edge.Course.ID]; ok && edge.CanTakeConcurrent {
			return true
		}
	}
	return false
}

func groupDetail(idx int, group requisite.Group) Detail {
	id := group.GroupID
	if id == "" {
		id = fmt.Sprint(idx)
	}

	links := make([]CourseLink, 0, len(group.Edges))
	names := make([]string, 0, len(group.Edges))
	for _, edge := range group.Edges {
		if edge.Course == nil {
			continue
		}
		name := edge.Course.DisplayName()
		links = append(links, CourseLink{ID: edge.Course.ID, Name: name})
		names = append(names, name)
	}

	name := strings.Join(names, ", ")
	if len(names) > 1 {
		name = "One of: " + name
	}

	return Detail{
		ID:      "prereq-group-" + id,
		Name:    name,
		IsGroup: len(links) > 1,
		Courses: links,
	}
}
