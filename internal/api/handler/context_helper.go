package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/satwikShresth/OpenMario-sub003/internal/dto"
	"github.com/satwikShresth/OpenMario-sub003/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// bindTermQuery 解析 ?term=&year=，失败时写入 400
func bindTermQuery(c *gin.Context) (*dto.TermQuery, bool) {
	var q dto.TermQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return nil, false
	}
	return &q, true
}

// bindTermBody 解析 JSON 请求体中的 term/year，失败时写入 400
func bindTermBody(c *gin.Context) (*dto.TermQuery, bool) {
	var q dto.TermQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		response.BadRequest(c, 10001, err.Error())
		return nil, false
	}
	return &q, true
}
