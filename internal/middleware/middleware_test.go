package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/careacademy/academy-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	tokens  map[string]*service.Claims
	revoked map[string]bool
	cutoffs map[uuid.UUID]time.Time
}

func (s *stubValidator) ValidateToken(tokenStr string) (*service.Claims, error) {
	if tokenStr == "expired" {
		return nil, fmt.Errorf("parse token: %w", jwt.ErrTokenExpired)
	}
	claims, ok := s.tokens[tokenStr]
	if !ok {
		return nil, errors.New("bad token")
	}
	return claims, nil
}

func (s *stubValidator) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], nil
}

func (s *stubValidator) RevokedBefore(_ context.Context, userID uuid.UUID) (time.Time, error) {
	return s.cutoffs[userID], nil
}

func newStubValidator() *stubValidator {
	user := &service.Claims{Role: model.RoleAuthenticated}
	user.ID = "jti-user"
	admin := &service.Claims{Role: model.RoleServiceRole}
	admin.ID = "jti-admin"
	gone := &service.Claims{Role: model.RoleServiceRole}
	gone.ID = "jti-gone"

	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	demoted := &service.Claims{Role: model.RoleServiceRole, UserID: uuid.New()}
	demoted.ID = "jti-demoted"
	demoted.IssuedAt = jwt.NewNumericDate(issued)
	fresh := &service.Claims{Role: model.RoleAuthenticated, UserID: demoted.UserID}
	fresh.ID = "jti-fresh"
	fresh.IssuedAt = jwt.NewNumericDate(issued.Add(2 * time.Hour))

	return &stubValidator{
		tokens: map[string]*service.Claims{
			"user": user, "admin": admin, "gone": gone,
			"demoted": demoted, "fresh": fresh,
		},
		revoked: map[string]bool{"jti-gone": true},
		cutoffs: map[uuid.UUID]time.Time{demoted.UserID: issued.Add(time.Hour)},
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

func TestAuthMiddleware(t *testing.T) {
	v := newStubValidator()
	r := gin.New()
	ok := func(c *gin.Context) { c.String(http.StatusOK, string(GetClaims(c).Role)) }
	r.GET("/me", RequireAuth(v), ok)
	r.GET("/admin", RequireAuth(v), RequireAdmin(), ok)
	r.GET("/ws", RequireAdminWSAuth(v), ok)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		code   response.ErrCode
	}{
		{"missing token", "/me", "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized, response.ErrTokenInvalid},
		{"expired token", "/me", "Bearer expired", http.StatusUnauthorized, response.ErrTokenExpired},
		{"revoked token", "/me", "Bearer gone", http.StatusUnauthorized, response.ErrTokenRevoked},
		{"token issued before role change", "/admin", "Bearer demoted", http.StatusUnauthorized, response.ErrTokenRevoked},
		{"ws token issued before role change", "/ws?token=demoted", "", http.StatusUnauthorized, response.ErrTokenRevoked},
		{"token issued after role change", "/me", "Bearer fresh", http.StatusOK, ""},
		{"user token", "/me", "Bearer user", http.StatusOK, ""},
		{"user on admin route", "/admin", "Bearer user", http.StatusForbidden, response.ErrAdminAccessOnly},
		{"admin on admin route", "/admin", "bearer admin", http.StatusOK, ""},
		{"ws without token", "/ws", "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"ws user token", "/ws?token=user", "", http.StatusForbidden, response.ErrAdminAccessOnly},
		{"ws admin token", "/ws?token=admin", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, w))
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()

	assert.True(t, rl.allow("1.1.1.1", now))
	assert.True(t, rl.allow("1.1.1.1", now))
	assert.False(t, rl.allow("1.1.1.1", now))
	assert.True(t, rl.allow("2.2.2.2", now), "buckets are per IP")
	assert.True(t, rl.allow("1.1.1.1", now.Add(31*time.Second)), "one token refills every 30s")

	rl.cleanup(now.Add(10 * time.Minute))
	assert.Empty(t, rl.visitors)
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/contact", NewRateLimiter(1, time.Minute).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/contact", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestBrotli(t *testing.T) {
	r := gin.New()
	r.Use(Brotli())
	big := strings.Repeat("enrollment ", 500)
	r.GET("/big", func(c *gin.Context) {
		c.String(http.StatusOK, big[:2000])
		c.String(http.StatusOK, big[2000:])
	})
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, big, string(plain))

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())
}
