package conflict

import (
	"context"
	"errors"
	"sync"

	"github.com/satwikShresth/OpenMario-sub003/internal/requisite"
)

const (
	testTerm = "Fall"
	testYear = 2025
)

// course 构造一个 Fall 2025 的课程条目
func course(courseID, crn, title, days, start, end string) Placement {
	return Placement{
		ID:        "evt-" + crn,
		Type:      PlacementCourse,
		CourseID:  courseID,
		CRN:       crn,
		Title:     title,
		Term:      testTerm,
		Year:      testYear,
		Days:      days,
		StartTime: start,
		EndTime:   end,
	}
}

func unavailable(id, days, start, end string) Placement {
	return Placement{
		ID:        id,
		Type:      PlacementUnavailable,
		Title:     "Work",
		Term:      testTerm,
		Year:      testYear,
		Days:      days,
		StartTime: start,
		EndTime:   end,
	}
}

func cref(id, subject, number string) requisite.CourseRef {
	return requisite.CourseRef{ID: id, SubjectID: subject, CourseNumber: number, Title: subject + " " + number}
}

// ── Mock requisite.Source ──

type mockSource struct {
	mu     sync.Mutex
	data   map[string]*requisite.CourseRequisites
	fail   map[string]bool
	panics map[string]bool
	calls  map[string]int
}

func newMockSource() *mockSource {
	return &mockSource{
		data:   map[string]*requisite.CourseRequisites{},
		fail:   map[string]bool{},
		panics: map[string]bool{},
		calls:  map[string]int{},
	}
}

func (m *mockSource) withCoreqs(courseID string, coreqs ...requisite.CourseRef) *mockSource {
	r := m.entry(courseID)
	r.Corequisites = append(r.Corequisites, coreqs...)
	return m
}

func (m *mockSource) withGroup(courseID, groupID string, edges ...requisite.Edge) *mockSource {
	r := m.entry(courseID)
	for i := range edges {
		edges[i].GroupID = groupID
	}
	r.PrerequisiteGroups = append(r.PrerequisiteGroups, requisite.Group{GroupID: groupID, Edges: edges})
	return m
}

func (m *mockSource) entry(courseID string) *requisite.CourseRequisites {
	r, ok := m.data[courseID]
	if !ok {
		r = &requisite.CourseRequisites{Course: requisite.CourseRef{ID: courseID}}
		m.data[courseID] = r
	}
	return r
}

func (m *mockSource) GetCourseRequisites(_ context.Context, courseID string) (*requisite.CourseRequisites, error) {
	m.mu.Lock()
	m.calls[courseID]++
	m.mu.Unlock()

	if m.panics[courseID] {
		panic("graph driver exploded")
	}
	if m.fail[courseID] {
		return nil, errors.New("graph store unavailable")
	}
	if r, ok := m.data[courseID]; ok {
		return r, nil
	}
	return &requisite.CourseRequisites{Course: requisite.CourseRef{ID: courseID}}, nil
}

func (m *mockSource) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func edge(c requisite.CourseRef, concurrent bool) requisite.Edge {
	return requisite.Edge{Course: &c, CanTakeConcurrent: concurrent}
}

func types(conflicts []Conflict) []Type {
	out := make([]Type, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, c.Type)
	}
	return out
}
