package handler

import (
	"net/http"

	"safehaven/internal/model"
	"safehaven/internal/transport/rest/middleware"
)

// AuthHandler exposes the decoded auth context. Tokens are issued by the
// SafeHaven backend, never here.
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// MeResponse describes who the gateway thinks the caller is
type MeResponse struct {
	Authenticated bool               `json:"authenticated"`
	User          *model.CurrentUser `json:"user,omitempty"`
}

// Me handles GET /v1/auth/me
//
//	@Summary	Current user decoded from the bearer token
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	MeResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/v1/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	writeJSON(w, http.StatusOK, MeResponse{
		Authenticated: middleware.IsAuthenticated(r.Context()),
		User:          user,
	})
}
