package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims are the claims of a bearer token issued by the SafeHaven backend
type UserClaims struct {
	UserID string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"nombre,omitempty"`
	Role   string `json:"rol,omitempty"`
	jwt.RegisteredClaims
}

// CurrentUser is the decoded identity attached to a request
type CurrentUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Token     string    `json:"-"` // Forwarded to the backend, never serialized
}
