package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/model"
)

// ── ICS 解析器测试 ──

// 一门周重复课程 + 一门拆成两个单日事件的实验课 + 一个不可用时段 + 一个全天事件
const testICSContent = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
SUMMARY:CS 260 - Data Structures
DTSTART;TZID=America/New_York:20250922T100000
DTEND;TZID=America/New_York:20250922T112000
RRULE:FREQ=WEEKLY;BYDAY=MO,WE;COUNT=20
X-CRN:41234
END:VEVENT
BEGIN:VEVENT
SUMMARY:CS 265: Lab
DTSTART;TZID=America/New_York:20250923T140000
DTEND;TZID=America/New_York:20250923T155000
DESCRIPTION:Section 061 CRN: 42001
END:VEVENT
BEGIN:VEVENT
SUMMARY:CS 265: Lab
DTSTART;TZID=America/New_York:20250925T140000
DTEND;TZID=America/New_York:20250925T155000
DESCRIPTION:Section 061 CRN: 42001
END:VEVENT
BEGIN:VEVENT
SUMMARY:Work shift
CATEGORIES:UNAVAILABLE
DTSTART;TZID=America/New_York:20250926T090000
DTEND;TZID=America/New_York:20250926T170000
END:VEVENT
BEGIN:VEVENT
SUMMARY:Holiday
DTSTART;VALUE=DATE:20250929
DTEND;VALUE=DATE:20250930
END:VEVENT
END:VCALENDAR`

func TestParseICS_BasicEvents(t *testing.T) {
	events, skipped, err := ParseICS(strings.NewReader(testICSContent), "user-1", "Fall", 2025)
	if err != nil {
		t.Fatalf("ParseICS 失败: %v", err)
	}
	if skipped != 1 {
		t.Errorf("期望跳过 1 个全天事件，实际=%d", skipped)
	}
	if len(events) != 3 {
		t.Fatalf("期望 3 条（实验课合并），实际=%d", len(events))
	}

	ds := events[0]
	if ds.Type != model.PlanEventCourse {
		t.Errorf("期望 course 类型，实际=%s", ds.Type)
	}
	if derefString(ds.CourseID) != "CS-260" || ds.Title != "Data Structures" {
		t.Errorf("期望 CS-260 / Data Structures，实际=%s / %s", derefString(ds.CourseID), ds.Title)
	}
	if derefString(ds.CRN) != "41234" {
		t.Errorf("期望 CRN 取 X-CRN，实际=%s", derefString(ds.CRN))
	}
	if got := conflict.ParseDays(string(ds.Days)); got != conflict.Monday|conflict.Wednesday {
		t.Errorf("期望 BYDAY 解析为周一周三，实际=%v", got.Names())
	}
	if derefString(ds.StartTime) != "10:00" || derefString(ds.EndTime) != "11:20" {
		t.Errorf("期望 10:00-11:20，实际=%s-%s", derefString(ds.StartTime), derefString(ds.EndTime))
	}

	lab := events[1]
	if derefString(lab.CourseID) != "CS-265" || lab.Title != "Lab" {
		t.Errorf("期望 CS-265 / Lab，实际=%s / %s", derefString(lab.CourseID), lab.Title)
	}
	if derefString(lab.CRN) != "42001" {
		t.Errorf("期望 CRN 从 DESCRIPTION 提取，实际=%s", derefString(lab.CRN))
	}
	if got := conflict.ParseDays(string(lab.Days)); got != conflict.Tuesday|conflict.Thursday {
		t.Errorf("期望两个单日事件合并为周二周四，实际=%v", got.Names())
	}

	block := events[2]
	if block.Type != model.PlanEventUnavailable {
		t.Errorf("期望 unavailable 类型，实际=%s", block.Type)
	}
	if block.CourseID != nil {
		t.Errorf("期望不可用时段无课程编号，实际=%s", *block.CourseID)
	}
}

func TestParseICS_ExamAndUnknownCourse(t *testing.T) {
	content := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
SUMMARY:MATH 121 Final Exam
DTSTART:20251208T080000
DTEND:20251208T100000
END:VEVENT
BEGIN:VEVENT
SUMMARY:Study group
DTSTART:20251209T180000
DTEND:20251209T200000
END:VEVENT
END:VCALENDAR`

	events, _, err := ParseICS(strings.NewReader(content), "user-1", "Fall", 2025)
	if err != nil {
		t.Fatalf("ParseICS 失败: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("期望 2 条，实际=%d", len(events))
	}
	if events[0].Type != model.PlanEventExam || derefString(events[0].CourseID) != "MATH-121" {
		t.Errorf("期望 MATH-121 exam，实际=%s %s", events[0].Type, derefString(events[0].CourseID))
	}
	if events[1].Type != model.PlanEventOther {
		t.Errorf("期望无法识别课程编号时降级为 other，实际=%s", events[1].Type)
	}
}

func TestParseICS_Malformed(t *testing.T) {
	_, _, err := ParseICS(strings.NewReader("not a calendar"), "user-1", "Fall", 2025)
	if !errors.Is(err, ErrICSParseFailed) {
		t.Errorf("期望 ErrICSParseFailed，实际: %v", err)
	}
}

func TestParseByDay(t *testing.T) {
	cases := []struct {
		rule string
		want conflict.DaySet
	}{
		{"FREQ=WEEKLY;BYDAY=MO,WE,FR", conflict.Monday | conflict.Wednesday | conflict.Friday},
		{"FREQ=MONTHLY;BYDAY=1TU", conflict.Tuesday},
		{"FREQ=WEEKLY;COUNT=10", 0},
		{"FREQ=WEEKLY;BYDAY=XX", 0},
	}
	for _, tc := range cases {
		if got := parseByDay(tc.rule); got != tc.want {
			t.Errorf("parseByDay(%q) 期望 %v，实际=%v", tc.rule, tc.want.Names(), got.Names())
		}
	}
}

func TestMergeEvents_KeepsFirstSeenOrder(t *testing.T) {
	events := []parsedPlanEvent{
		{Type: "course", CourseID: "B", Title: "b", Days: conflict.Monday, StartTime: "09:00", EndTime: "10:00"},
		{Type: "course", CourseID: "A", Title: "a", Days: conflict.Tuesday, StartTime: "09:00", EndTime: "10:00"},
		{Type: "course", CourseID: "B", Title: "b", Days: conflict.Friday, StartTime: "09:00", EndTime: "10:00"},
	}
	merged := mergeEvents(events)
	if len(merged) != 2 {
		t.Fatalf("期望合并为 2 条，实际=%d", len(merged))
	}
	if merged[0].CourseID != "B" || merged[0].Days != conflict.Monday|conflict.Friday {
		t.Errorf("期望第一条为 B 周一周五，实际=%s %v", merged[0].CourseID, merged[0].Days.Names())
	}
}
