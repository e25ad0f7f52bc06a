package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"safehaven/internal/model"
	"safehaven/internal/service"
)

type contextKey string

const CurrentUserKey contextKey = "currentUser"

// AuthMiddleware attaches the decoded bearer token to the request context
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// OptionalAuth lets anonymous requests through but rejects bad tokens
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, present := extractBearerToken(r)
		if !present {
			// Browsers cannot set headers on a WebSocket upgrade
			token = r.URL.Query().Get("token")
			present = token != ""
		}
		if !present {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authSvc.Authenticate(token)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAuth rejects anonymous requests. It expects OptionalAuth upstream.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			writeUnauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser stores the current user in ctx
func WithUser(ctx context.Context, user *model.CurrentUser) context.Context {
	return context.WithValue(ctx, CurrentUserKey, user)
}

// CurrentUser extracts the current user from context, nil when anonymous
func CurrentUser(ctx context.Context) *model.CurrentUser {
	if v, ok := ctx.Value(CurrentUserKey).(*model.CurrentUser); ok {
		return v
	}
	return nil
}

// IsAuthenticated reports whether a valid bearer token came with the request
func IsAuthenticated(ctx context.Context) bool {
	return CurrentUser(ctx) != nil
}

// extractBearerToken reports present=true for any Authorization header, so
// a malformed one is rejected rather than treated as anonymous.
func extractBearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthorized"})
}
