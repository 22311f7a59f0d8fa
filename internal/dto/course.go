package dto

// ListCoursesRequest 课程列表查询
type ListCoursesRequest struct {
	PaginationRequest
	SubjectID string `form:"subject_id" binding:"omitempty,max=8"`
}

// CourseResponse 课程简要信息
type CourseResponse struct {
	ID           string   `json:"id"`
	SubjectID    string   `json:"subject_id"`
	CourseNumber string   `json:"course_number"`
	Title        string   `json:"title"`
	Credits      *float64 `json:"credits,omitempty"`
}

// FlushCacheResponse 缓存清理结果
type FlushCacheResponse struct {
	FlushedEntries int `json:"flushed_entries"`
}
