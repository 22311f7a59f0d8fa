package dto

import (
	"time"

	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
)

// ConflictStateResponse 某学期的冲突状态
type ConflictStateResponse struct {
	Term        string              `json:"term"`
	Year        int                 `json:"year"`
	Conflicts   []conflict.Conflict `json:"conflicts"`
	Count       int                 `json:"count"`
	IsLoading   bool                `json:"is_loading"`
	LastUpdated *time.Time          `json:"last_updated"`
}

// ConflictCountResponse 冲突数量
type ConflictCountResponse struct {
	Term  string `json:"term"`
	Year  int    `json:"year"`
	Count int    `json:"count"`
}

// ValidationResponse 提交前校验结果
// Blocking 中有任何冲突时 Valid 为 false
type ValidationResponse struct {
	Valid    bool                `json:"valid"`
	Blocking []conflict.Conflict `json:"blocking"`
	Warnings []conflict.Conflict `json:"warnings"`
}
