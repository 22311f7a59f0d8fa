package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/satwikShresth/OpenMario-sub003/config"
)

const testSecret = "test-secret-key-for-unit-testing-2026"

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      testSecret,
		AccessTokenTTL: 15 * time.Minute,
		Issuer:         "openmario",
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("student-1", "student")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.UserID != "student-1" {
		t.Errorf("期望 UserID=student-1，实际=%s", claims.UserID)
	}
	if claims.Role != "student" {
		t.Errorf("期望 Role=student，实际=%s", claims.Role)
	}
	if claims.Issuer != "openmario" {
		t.Errorf("期望 Issuer=openmario，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      testSecret,
		AccessTokenTTL: -1 * time.Minute,
	})

	token, err := m.GenerateAccessToken("student-1", "student")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	_, err = m.ParseToken(token)
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际=%v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := newTestManager()
	token, _ := m.GenerateAccessToken("student-1", "student")

	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-key-for-testing-000",
		AccessTokenTTL: 15 * time.Minute,
	})
	if _, err := other.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}

func TestParseToken_RejectsNonAccessToken(t *testing.T) {
	now := time.Now()
	claims := Claims{
		UserID:    "student-1",
		Role:      "student",
		TokenType: "refresh",
		RegisteredClaims: jwtv5.RegisteredClaims{
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	if _, err := newTestManager().ParseToken(signed); err != ErrTokenInvalid {
		t.Errorf("期望 refresh token 被拒绝，实际=%v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := newTestManager().ParseToken("not-a-jwt"); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际=%v", err)
	}
}
