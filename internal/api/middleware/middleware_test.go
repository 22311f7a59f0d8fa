package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/config"
	"github.com/satwikShresth/OpenMario-sub003/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT(ttl time.Duration) *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-at-least-16",
		AccessTokenTTL: ttl,
	})
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": c.GetString("user_id"),
		"role":    c.GetString("role"),
	})
}

// ── JWTAuth ──

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT(time.Hour)
	valid, _ := mgr.GenerateAccessToken("u-1", "student")
	expired, _ := newTestJWT(-time.Minute).GenerateAccessToken("u-1", "student")

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"有效 Token", "Bearer " + valid, 200},
		{"小写 scheme", "bearer " + valid, 200},
		{"缺少认证头", "", 401},
		{"格式错误", "Token " + valid, 401},
		{"空 Token", "Bearer ", 401},
		{"签名错误", "Bearer " + valid + "x", 401},
		{"已过期", "Bearer " + expired, 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/p", JWTAuth(mgr), okHandler)

			req := httptest.NewRequest("GET", "/p", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("期望状态码 %d，实际=%d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == 200 && !strings.Contains(w.Body.String(), `"user_id":"u-1"`) {
				t.Errorf("期望上下文注入 user_id，实际 body=%s", w.Body.String())
			}
		})
	}
}

// ── RoleAuth ──

func TestRoleAuth(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"管理员放行", "admin", 200},
		{"学生拒绝", "student", 403},
		{"未认证", "", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", func(c *gin.Context) {
				if tt.role != "" {
					c.Set("role", tt.role)
				}
				c.Next()
			}, RoleAuth("admin"), okHandler)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("期望状态码 %d，实际=%d", tt.wantStatus, w.Code)
			}
		})
	}
}

// ── RateLimit ──

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		limiter    *fakeLimiter
		wantStatus int
	}{
		{"允许", &fakeLimiter{allowed: true}, 200},
		{"超限", &fakeLimiter{allowed: false}, 429},
		{"Redis 出错时放行", &fakeLimiter{err: errors.New("down")}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/p", func(c *gin.Context) {
				c.Set("user_id", "u-1")
				c.Next()
			}, RateLimit(tt.limiter, 10, time.Minute, zap.NewNop()), okHandler)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/p", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("期望状态码 %d，实际=%d", tt.wantStatus, w.Code)
			}
			if len(tt.limiter.keys) != 1 || tt.limiter.keys[0] != "u-1:/p" {
				t.Errorf("期望按用户计数，实际 keys=%v", tt.limiter.keys)
			}
		})
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/p", RateLimit(nil, 10, time.Minute, zap.NewNop()), okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/p", nil))
	if w.Code != http.StatusOK {
		t.Errorf("期望无限流器时放行，实际=%d", w.Code)
	}
}

// ── BodyLimit ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/p", BodyLimit(8), okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/p", bytes.NewReader(make([]byte, 64))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际=%d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/p", bytes.NewReader(make([]byte, 4))))
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/p", RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("期望沿用传入的 request id，实际=%s", w.Header().Get(requestIDHeader))
	}

	req = httptest.NewRequest("GET", "/p", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", requestIDMaxLen+1))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); len(got) != 36 {
		t.Errorf("期望超长 id 被替换为 uuid，实际=%q", got)
	}
}

// ── CORS ──

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/p", okHandler)

	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("期望允许白名单来源，实际=%q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition") {
		t.Error("期望暴露 Content-Disposition")
	}

	req = httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("期望非白名单来源不返回 CORS 头")
	}

	req = httptest.NewRequest("OPTIONS", "/p", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("期望预检返回 204，实际=%d", w.Code)
	}
}
