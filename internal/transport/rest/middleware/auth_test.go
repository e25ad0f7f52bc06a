package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safehaven/internal/config"
	"safehaven/internal/model"
	"safehaven/internal/service"
)

const secret = "test-secret"

func token(t *testing.T, id string, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, model.UserClaims{
		UserID:           id,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	if u := CurrentUser(r.Context()); u != nil {
		w.Write([]byte(u.ID))
		return
	}
	w.Write([]byte("anonymous"))
}

func TestOptionalAuth(t *testing.T) {
	m := NewAuthMiddleware(service.NewAuthService(config.AuthConfig{JWTSecret: secret}))
	h := m.OptionalAuth(http.HandlerFunc(echoUser))

	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{name: "anonymous", status: http.StatusOK, body: "anonymous"},
		{name: "bearer", header: "Bearer " + token(t, "user-1", time.Now().Add(time.Hour)), status: http.StatusOK, body: "user-1"},
		{name: "lowercase scheme", header: "bearer " + token(t, "user-1", time.Now().Add(time.Hour)), status: http.StatusOK, body: "user-1"},
		{name: "query token", query: token(t, "user-2", time.Now().Add(time.Hour)), status: http.StatusOK, body: "user-2"},
		{name: "expired", header: "Bearer " + token(t, "user-1", time.Now().Add(-time.Hour)), status: http.StatusUnauthorized},
		{name: "malformed header", header: "Basic abc", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(service.NewAuthService(config.AuthConfig{JWTSecret: secret}))
	h := m.OptionalAuth(m.RequireAuth(http.HandlerFunc(echoUser)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required","code":"unauthorized"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-1", time.Now().Add(time.Hour)))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}
