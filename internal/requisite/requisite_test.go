package requisite

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/internal/model"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
	pkgerrors "github.com/satwikShresth/OpenMario-sub003/pkg/errors"
)

func ref(id string) *CourseRef {
	return &CourseRef{ID: id, SubjectID: "CS", CourseNumber: id, Title: "Course " + id}
}

// ═══════════════════════════════════════════════════════════
// GroupPrerequisites
// ═══════════════════════════════════════════════════════════

func TestGroupPrerequisites_FirstSeenOrder(t *testing.T) {
	edges := []Edge{
		{Course: ref("A"), GroupID: "g2"},
		{Course: ref("B"), GroupID: "g1"},
		{Course: ref("C"), GroupID: "g2"},
		{Course: ref("D"), GroupID: "g3"},
	}

	groups := GroupPrerequisites(edges)
	if len(groups) != 3 {
		t.Fatalf("期望 3 组，实际=%d", len(groups))
	}

	wantGroups := []string{"g2", "g1", "g3"}
	for i, g := range groups {
		if g.GroupID != wantGroups[i] {
			t.Errorf("第 %d 组期望 %s，实际=%s", i, wantGroups[i], g.GroupID)
		}
	}
	if len(groups[0].Edges) != 2 || groups[0].Edges[0].Course.ID != "A" || groups[0].Edges[1].Course.ID != "C" {
		t.Errorf("g2 组内顺序错误: %+v", groups[0].Edges)
	}
}

func TestGroupPrerequisites_Deterministic(t *testing.T) {
	edges := []Edge{
		{Course: ref("A"), GroupID: "x", MinimumGrade: "C"},
		{Course: ref("B"), GroupID: "y"},
		{Course: ref("C"), GroupID: "x", CanTakeConcurrent: true},
	}

	first := GroupPrerequisites(edges)
	second := GroupPrerequisites(edges)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("两次分组结果不一致:\n%+v\n%+v", first, second)
	}
}

func TestGroupPrerequisites_DropsNilCourse(t *testing.T) {
	edges := []Edge{
		{Course: nil, GroupID: "g1"},
		{Course: ref("A"), GroupID: "g2"},
	}

	groups := GroupPrerequisites(edges)
	if len(groups) != 1 || groups[0].GroupID != "g2" {
		t.Errorf("期望只剩 g2 组，实际=%+v", groups)
	}

	if got := GroupPrerequisites([]Edge{{Course: nil, GroupID: "g1"}}); len(got) != 0 {
		t.Errorf("只有占位边时期望无约束，实际=%+v", got)
	}
}

func TestGroupPrerequisites_Empty(t *testing.T) {
	groups := GroupPrerequisites(nil)
	if groups == nil || len(groups) != 0 {
		t.Errorf("期望非 nil 空切片，实际=%#v", groups)
	}
}

// ═══════════════════════════════════════════════════════════
// Resolver
// ═══════════════════════════════════════════════════════════

func newResolverFixture() (*mockCourseRepo, *mockRequisiteRepo) {
	courses := &mockCourseRepo{courses: map[string]*model.Course{
		"CS-260":   {CourseID: "CS-260", SubjectID: "CS", CourseNumber: "260", Title: "Data Structures"},
		"CS-171":   {CourseID: "CS-171", SubjectID: "CS", CourseNumber: "171", Title: "Computer Programming I"},
		"CS-265":   {CourseID: "CS-265", SubjectID: "CS", CourseNumber: "265", Title: "Advanced Programming Tools"},
		"MATH-121": {CourseID: "MATH-121", SubjectID: "MATH", CourseNumber: "121", Title: "Calculus I"},
	}}
	relations := &mockRequisiteRepo{
		prereqs: map[string][]repository.PrerequisiteRow{
			"CS-260": {
				{RelationID: 1, GroupID: "1", MinimumGrade: "D", Course: courses.courses["CS-171"]},
				{RelationID: 2, GroupID: "2", Course: nil},
				{RelationID: 3, GroupID: "1", CanTakeConcurrent: true, Course: courses.courses["MATH-121"]},
			},
		},
		coreqs: map[string][]model.Course{
			"CS-260": {
				*courses.courses["CS-265"],
				*courses.courses["CS-265"],
				*courses.courses["CS-260"],
			},
		},
	}
	return courses, relations
}

func TestResolver_GetCourseRequisites(t *testing.T) {
	courses, relations := newResolverFixture()
	r := NewResolver(courses, relations, zap.NewNop())

	got, err := r.GetCourseRequisites(context.Background(), "CS-260")
	if err != nil {
		t.Fatalf("GetCourseRequisites 失败: %v", err)
	}

	if got.Course.Title != "Data Structures" {
		t.Errorf("期望课程标题 Data Structures，实际=%s", got.Course.Title)
	}
	if len(got.PrerequisiteGroups) != 1 {
		t.Fatalf("期望占位边被过滤后剩 1 组，实际=%d", len(got.PrerequisiteGroups))
	}
	g := got.PrerequisiteGroups[0]
	if len(g.Edges) != 2 || g.Edges[0].Course.ID != "CS-171" || g.Edges[1].Course.ID != "MATH-121" {
		t.Errorf("组内成员错误: %+v", g.Edges)
	}
	if g.Edges[0].MinimumGrade != "D" || !g.Edges[1].CanTakeConcurrent {
		t.Errorf("边属性丢失: %+v", g.Edges)
	}
	if len(got.Corequisites) != 1 || got.Corequisites[0].ID != "CS-265" {
		t.Errorf("期望同修课去重并排除自身，实际=%+v", got.Corequisites)
	}
	if got.Corequisites[0].DisplayName() != "CS 265" {
		t.Errorf("期望 DisplayName=CS 265，实际=%s", got.Corequisites[0].DisplayName())
	}
}

func TestResolver_CourseNotFound(t *testing.T) {
	courses, relations := newResolverFixture()
	r := NewResolver(courses, relations, zap.NewNop())

	_, err := r.GetCourseRequisites(context.Background(), "NOPE-1")
	if !errors.Is(err, pkgerrors.ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际=%v", err)
	}
}

func TestResolver_StoreError(t *testing.T) {
	courses, relations := newResolverFixture()
	relations.err = errors.New("connection refused")
	r := NewResolver(courses, relations, zap.NewNop())

	_, err := r.GetCourseRequisites(context.Background(), "CS-260")
	if err == nil {
		t.Fatal("期望返回错误")
	}
	if errors.Is(err, pkgerrors.ErrCourseNotFound) {
		t.Error("存储错误不应映射为 ErrCourseNotFound")
	}
}

func TestResolver_NoRelations(t *testing.T) {
	courses, relations := newResolverFixture()
	r := NewResolver(courses, relations, zap.NewNop())

	got, err := r.GetCourseRequisites(context.Background(), "CS-171")
	if err != nil {
		t.Fatalf("GetCourseRequisites 失败: %v", err)
	}
	if len(got.PrerequisiteGroups) != 0 || len(got.Corequisites) != 0 {
		t.Errorf("期望无约束，实际=%+v", got)
	}
}
