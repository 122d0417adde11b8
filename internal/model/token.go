package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// AccessTokenTTL is the lifetime of access tokens.
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL is the lifetime of refresh tokens and of their session entry.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenClass selects the signing key and claims a token is checked against.
type TokenClass string

const (
	TokenAccess  TokenClass = "access"
	TokenRefresh TokenClass = "refresh"
)

// IssuedToken is a signed token together with its lifetime.
type IssuedToken struct {
	Value     string
	TTL       time.Duration
	ExpiresAt time.Time
}

// Session is the pair of tokens handed to a client after login.
type Session struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// TokenManager mints and validates access and refresh tokens.
type TokenManager interface {
	IssueAccessToken(identityID uuid.UUID) (IssuedToken, error)
	IssueRefreshToken(identityID uuid.UUID) (IssuedToken, error)
	// Verify returns ErrTokenExpired or ErrTokenInvalid on failure.
	Verify(token string, class TokenClass) (uuid.UUID, error)
}
