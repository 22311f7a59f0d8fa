package conflict

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DaySet 星期集合，位 0 为周一，位 6 为周日
type DaySet uint8

const (
	Monday DaySet = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// 兼容全称、三字母缩写和单字母代码（R=周四，U=周日）
var dayTokens = map[string]DaySet{
	"monday": Monday, "mon": Monday, "m": Monday,
	"tuesday": Tuesday, "tue": Tuesday, "tues": Tuesday, "t": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday, "w": Wednesday,
	"thursday": Thursday, "thu": Thursday, "thur": Thursday, "thurs": Thursday, "r": Thursday,
	"friday": Friday, "fri": Friday, "f": Friday,
	"saturday": Saturday, "sat": Saturday, "s": Saturday,
	"sunday": Sunday, "sun": Sunday, "u": Sunday,
}

// ParseDays 解析 JSON 数组形式的星期列表
// 无法解析的输入返回空集合，不报错；未知的单个星期值被忽略
func ParseDays(raw string) DaySet {
	if strings.TrimSpace(raw) == "" {
		return 0
	}
	var tokens []string
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return 0
	}
	var set DaySet
	for _, tok := range tokens {
		set |= dayTokens[strings.ToLower(strings.TrimSpace(tok))]
	}
	return set
}

// DayFromName 解析单个星期值，未知值返回 false
func DayFromName(tok string) (DaySet, bool) {
	d, ok := dayTokens[strings.ToLower(strings.TrimSpace(tok))]
	return d, ok
}

// DayFromWeekday 由 time.Weekday 转换
func DayFromWeekday(w time.Weekday) DaySet {
	if w == time.Sunday {
		return Sunday
	}
	return Monday << (w - time.Monday)
}

// Intersect 交集
func (d DaySet) Intersect(other DaySet) DaySet {
	return d & other
}

// Empty 是否为空集
func (d DaySet) Empty() bool {
	return d == 0
}

// Names 按周一到周日的顺序返回英文全称
func (d DaySet) Names() []string {
	names := make([]string, 0, len(dayNames))
	for i, name := range dayNames {
		if d&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return names
}

// MarshalJSON 序列化为星期全称数组
func (d DaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Names())
}

// ClockMinutes 校验并解析 HH:MM 时间，供输入校验使用
func ClockMinutes(s string) (int, bool) {
	return parseMinutes(s)
}

// parseMinutes 把 "HH:MM" 或 "HH:MM:SS" 转成当天分钟数，范围 00:00-24:00，秒被舍去
func parseMinutes(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	sec := 0
	if len(parts) == 3 {
		if sec, err = strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, false
		}
	}
	// 24 点只允许 24:00 表示当天结束
	if h == 24 && (m > 0 || sec > 0) {
		return 0, false
	}
	return h*60 + m, true
}

// interval 条目的每周时间段
type interval struct {
	days       DaySet
	start, end int
}

// weeklyInterval 缺少星期或时间、时间格式错误时返回 false
func weeklyInterval(p Placement) (interval, bool) {
	if p.Days == "" || p.StartTime == "" || p.EndTime == "" {
		return interval{}, false
	}
	start, ok := parseMinutes(p.StartTime)
	if !ok {
		return interval{}, false
	}
	end, ok := parseMinutes(p.EndTime)
	if !ok {
		return interval{}, false
	}
	return interval{days: ParseDays(p.Days), start: start, end: end}, true
}

// overlaps 有共同星期且半开区间相交时返回共同星期；首尾相接不算冲突
func (a interval) overlaps(b interval) (DaySet, bool) {
	common := a.days.Intersect(b.days)
	if common.Empty() {
		return 0, false
	}
	if a.start < b.end && b.start < a.end {
		return common, true
	}
	return 0, false
}
