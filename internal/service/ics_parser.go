package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"gorm.io/datatypes"

	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 内容解析为学期计划条目。
//
// 规则：
//   - DTSTART/DTEND 确定上课时间，RRULE 的 BYDAY 确定星期；无 BYDAY 时取 DTSTART 的星期
//   - 条目类型由 CATEGORIES 或 SUMMARY 推断：EXAM → exam，UNAVAILABLE → unavailable
//   - 课程编号取 X-COURSE-ID，缺失时从 SUMMARY 开头的 "CS 260" 形式推导
//   - CRN 取 X-CRN，缺失时从 DESCRIPTION 中的 "CRN: 12345" 提取
//   - 同一课程同一时段的多个单日事件合并为一个多星期条目
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize     = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout    = 30 * time.Second
	defaultICSTimezone = "America/New_York"
)

var (
	ErrICSParseFailed = errors.New("ICS 格式解析失败")
	ErrICSFetchFailed = errors.New("获取 ICS 失败")
)

var (
	courseCodePattern = regexp.MustCompile(`^([A-Z]{2,4})\s*-?\s*(\d{3}[A-Z]?)\b\s*[-:–]?\s*`)
	crnPattern        = regexp.MustCompile(`(?i)CRN:?\s*(\d{4,6})`)
)

var icsDayCodes = map[string]time.Weekday{
	"MO": time.Monday, "TU": time.Tuesday, "WE": time.Wednesday, "TH": time.Thursday,
	"FR": time.Friday, "SA": time.Saturday, "SU": time.Sunday,
}

// parsedPlanEvent ICS 解析中间结构
type parsedPlanEvent struct {
	Type      string
	CourseID  string
	CRN       string
	Title     string
	Days      conflict.DaySet
	StartTime string
	EndTime   string
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}
	if !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
		return nil, fmt.Errorf("%w: 不支持的协议", ErrICSFetchFailed)
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSFetchFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d", ErrICSFetchFailed, resp.StatusCode)
	}
	// 限制响应体大小，防止恶意 URL 返回超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseICS 解析 ICS 内容并转为计划条目
// 返回值：条目列表、被跳过的 VEVENT 数量、错误
func ParseICS(reader io.Reader, userID, term string, year int) ([]model.PlanEvent, int, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrICSParseFailed, err)
	}

	loc, err := time.LoadLocation(defaultICSTimezone)
	if err != nil {
		loc = time.UTC
	}

	// 阶段 1: 解析所有 VEVENT
	var (
		events  []parsedPlanEvent
		skipped int
	)
	for _, comp := range cal.Events() {
		evt, ok := parseVEvent(comp, loc)
		if !ok {
			skipped++
			continue
		}
		events = append(events, evt)
	}

	// 阶段 2: 合并同课程同时段事件的星期
	merged := mergeEvents(events)

	// 阶段 3: 转为 model.PlanEvent
	result := make([]model.PlanEvent, 0, len(merged))
	for _, evt := range merged {
		days, _ := json.Marshal(evt.Days.Names())
		start, end := evt.StartTime, evt.EndTime
		result = append(result, model.PlanEvent{
			UserID:    userID,
			Type:      evt.Type,
			CourseID:  optString(evt.CourseID),
			CRN:       optString(evt.CRN),
			Title:     evt.Title,
			Term:      term,
			Year:      year,
			Days:      datatypes.JSON(days),
			StartTime: &start,
			EndTime:   &end,
		})
	}
	return result, skipped, nil
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, loc *time.Location) (parsedPlanEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedPlanEvent{}, false
	}
	name := strings.TrimSpace(summary.Value)

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return parsedPlanEvent{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil || !dtEnd.After(dtStart) {
		return parsedPlanEvent{}, false
	}
	// 跨天事件无法表示为每周时段
	if dtEnd.Format("20060102") != dtStart.Format("20060102") {
		return parsedPlanEvent{}, false
	}

	days := conflict.DayFromWeekday(dtStart.Weekday())
	if rrule := evt.GetProperty(ics.ComponentPropertyRrule); rrule != nil {
		if byDay := parseByDay(rrule.Value); !byDay.Empty() {
			days = byDay
		}
	}

	out := parsedPlanEvent{
		Type:      classifyEvent(evt, name),
		Title:     name,
		Days:      days,
		StartTime: dtStart.Format("15:04"),
		EndTime:   dtEnd.Format("15:04"),
	}

	if m := courseCodePattern.FindStringSubmatch(name); m != nil {
		out.CourseID = m[1] + "-" + m[2]
		if rest := strings.TrimSpace(name[len(m[0]):]); rest != "" {
			out.Title = rest
		}
	}
	if p := evt.GetProperty(ics.ComponentProperty("X-COURSE-ID")); p != nil && strings.TrimSpace(p.Value) != "" {
		out.CourseID = strings.TrimSpace(p.Value)
	}

	if p := evt.GetProperty(ics.ComponentProperty("X-CRN")); p != nil && strings.TrimSpace(p.Value) != "" {
		out.CRN = strings.TrimSpace(p.Value)
	} else if p := evt.GetProperty(ics.ComponentPropertyDescription); p != nil {
		if m := crnPattern.FindStringSubmatch(p.Value); m != nil {
			out.CRN = m[1]
		}
	}

	// 无法识别课程编号的课程条目降级为普通条目
	if out.Type == model.PlanEventCourse && out.CourseID == "" {
		out.Type = model.PlanEventOther
	}
	return out, true
}

// classifyEvent 由 CATEGORIES 与 SUMMARY 推断条目类型
func classifyEvent(evt *ics.VEvent, summary string) string {
	var categories string
	if p := evt.GetProperty(ics.ComponentPropertyCategories); p != nil {
		categories = strings.ToUpper(p.Value)
	}
	upper := strings.ToUpper(summary)
	switch {
	case strings.Contains(categories, "UNAVAILABLE"), strings.Contains(upper, "UNAVAILABLE"):
		return model.PlanEventUnavailable
	case strings.Contains(categories, "EXAM"), strings.Contains(upper, "EXAM"):
		return model.PlanEventExam
	default:
		return model.PlanEventCourse
	}
}

// parseByDay 解析 RRULE 中的 BYDAY（如 FREQ=WEEKLY;BYDAY=MO,WE）
func parseByDay(value string) conflict.DaySet {
	var set conflict.DaySet
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || strings.ToUpper(kv[0]) != "BYDAY" {
			continue
		}
		for _, code := range strings.Split(kv[1], ",") {
			code = strings.ToUpper(strings.TrimSpace(code))
			// 去掉 "1MO" / "-1FR" 形式的序号前缀
			if len(code) > 2 {
				code = code[len(code)-2:]
			}
			if wd, ok := icsDayCodes[code]; ok {
				set |= conflict.DayFromWeekday(wd)
			}
		}
	}
	return set
}

// mergeEvents 合并同一课程同一时段的事件，星期取并集，保持首次出现的顺序
func mergeEvents(events []parsedPlanEvent) []parsedPlanEvent {
	type key struct {
		Type      string
		CourseID  string
		CRN       string
		Title     string
		StartTime string
		EndTime   string
	}
	merged := make(map[key]*parsedPlanEvent)
	order := []key{}

	for _, e := range events {
		k := key{Type: e.Type, CourseID: e.CourseID, CRN: e.CRN, Title: e.Title, StartTime: e.StartTime, EndTime: e.EndTime}
		if existing, ok := merged[k]; ok {
			existing.Days |= e.Days
		} else {
			cp := e
			merged[k] = &cp
			order = append(order, k)
		}
	}

	result := make([]parsedPlanEvent, 0, len(merged))
	for _, k := range order {
		result = append(result, *merged[k])
	}
	return result
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	// 全天事件没有时段，不能作为计划条目
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
	}

	// 检查 TZID 参数
	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, val); err == nil {
			if strings.HasSuffix(layout, "Z") {
				return t.In(loc), nil
			}
			if tzid != "" {
				if tzLoc, err := time.LoadLocation(tzid); err == nil {
					return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
				}
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}

// optString 空串存为 NULL
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
