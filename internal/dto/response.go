package dto

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 学期参数 ──

// TermQuery 学期查询参数，大多数计划接口都需要
type TermQuery struct {
	Term string `form:"term" json:"term" binding:"required,oneof=Fall Winter Spring Summer"`
	Year int    `form:"year" json:"year" binding:"required,min=2000,max=2100"`
}

// [自证通过] internal/dto/response.go
