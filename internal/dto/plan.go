package dto

import (
	"time"
)

// ── 计划条目 ──

// CreatePlanEventRequest 新增计划条目
// course 类型必须带 course_id；unavailable 类型必须带完整时间
type CreatePlanEventRequest struct {
	Type      string   `json:"type"       binding:"required,oneof=course exam unavailable other"`
	CourseID  string   `json:"course_id"  binding:"omitempty,max=64"`
	CRN       string   `json:"crn"        binding:"omitempty,max=16"`
	Title     string   `json:"title"      binding:"omitempty,max=200"`
	Term      string   `json:"term"       binding:"required,oneof=Fall Winter Spring Summer"`
	Year      int      `json:"year"       binding:"required,min=2000,max=2100"`
	Days      []string `json:"days"       binding:"omitempty,max=7,dive,required"`
	StartTime string   `json:"start_time" binding:"omitempty"`
	EndTime   string   `json:"end_time"   binding:"omitempty"`
}

// PlanEventResponse 计划条目
type PlanEventResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CourseID  string    `json:"course_id,omitempty"`
	CRN       string    `json:"crn,omitempty"`
	Title     string    `json:"title"`
	Term      string    `json:"term"`
	Year      int       `json:"year"`
	Days      []string  `json:"days"`
	StartTime string    `json:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ── ICS 导入 ──

// ImportICSRequest 订阅链接导入（webcal:// 或 https://）
type ImportICSRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ImportICSResponse ICS 导入结果
type ImportICSResponse struct {
	ImportedCount int                 `json:"imported_count"`
	SkippedCount  int                 `json:"skipped_count"`
	Events        []PlanEventResponse `json:"events"`
}

// ── 已修课程 ──

// CompletedCoursesResponse 已修课程列表
type CompletedCoursesResponse struct {
	CourseIDs []string `json:"course_ids"`
}
