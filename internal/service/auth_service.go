package service

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"safehaven/internal/config"
	"safehaven/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrAuthRequired = errors.New("authentication required")
	ErrForbidden    = errors.New("session belongs to another user")
)

const maxCachedTokens = 10000

type cachedUser struct {
	user     *model.CurrentUser
	validTil time.Time
}

// AuthService is the one place bearer tokens are decoded. Decoded users are
// cached per token until the token expires or the cache TTL passes.
type AuthService struct {
	jwtSecret []byte
	cacheTTL  time.Duration
	now       func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedUser
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig) *AuthService {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &AuthService{
		jwtSecret: []byte(cfg.JWTSecret),
		cacheTTL:  ttl,
		now:       time.Now,
		cache:     make(map[string]cachedUser),
	}
}

// Authenticate decodes a bearer token into the current user
func (s *AuthService) Authenticate(tokenString string) (*model.CurrentUser, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	now := s.now()

	s.mu.RLock()
	entry, ok := s.cache[tokenString]
	s.mu.RUnlock()
	if ok && now.Before(entry.validTil) {
		return entry.user, nil
	}

	claims, err := s.decode(tokenString)
	if err != nil {
		s.forget(tokenString)
		return nil, ErrInvalidToken
	}

	user := &model.CurrentUser{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
		Token: tokenString,
	}
	if user.ID == "" {
		user.ID = claims.Subject
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}

	validTil := now.Add(s.cacheTTL)
	if claims.ExpiresAt != nil {
		user.ExpiresAt = claims.ExpiresAt.Time
		if user.ExpiresAt.Before(validTil) {
			validTil = user.ExpiresAt
		}
	}
	s.remember(tokenString, cachedUser{user: user, validTil: validTil}, now)
	return user, nil
}

// decode verifies HS256 tokens when a secret is configured. Without one the
// backend stays the authority and only the claims and expiry are checked.
func (s *AuthService) decode(tokenString string) (*model.UserClaims, error) {
	claims := &model.UserClaims{}
	parser := jwt.NewParser(jwt.WithTimeFunc(s.now))

	if len(s.jwtSecret) == 0 {
		if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
			return nil, err
		}
		if claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time) {
			return nil, jwt.ErrTokenExpired
		}
		return claims, nil
	}

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) remember(token string, entry cachedUser, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cache) >= maxCachedTokens {
		for k, v := range s.cache {
			if !now.Before(v.validTil) {
				delete(s.cache, k)
			}
		}
		if len(s.cache) >= maxCachedTokens {
			s.cache = make(map[string]cachedUser)
		}
	}
	s.cache[token] = entry
}

func (s *AuthService) forget(token string) {
	s.mu.Lock()
	delete(s.cache, token)
	s.mu.Unlock()
}

// CheckOwner allows anonymous sessions to anyone holding the id and owned
// sessions only to their owner.
func CheckOwner(sess *model.Session, user *model.CurrentUser) error {
	if sess.OwnerID == "" {
		return nil
	}
	if user == nil || user.ID != sess.OwnerID {
		return ErrForbidden
	}
	return nil
}
