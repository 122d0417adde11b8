package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var _ model.TokenManager = (*JWT)(nil)

// Claims represents JWT claims with token type and identity ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC. Access and refresh
// tokens are signed with different keys.
type JWT struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWT creates a token manager. The two secrets must be non-empty and differ.
func NewJWT(accessSecret, refreshSecret string) (*JWT, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	return &JWT{
		accessKey:  []byte(accessSecret),
		refreshKey: []byte(refreshSecret),
		accessTTL:  model.AccessTokenTTL,
		refreshTTL: model.RefreshTokenTTL,
		now:        time.Now,
	}, nil
}

// IssueAccessToken creates a short-lived access token.
func (j *JWT) IssueAccessToken(identityID uuid.UUID) (model.IssuedToken, error) {
	return j.issue(identityID, model.TokenAccess)
}

// IssueRefreshToken creates a long-lived refresh token.
func (j *JWT) IssueRefreshToken(identityID uuid.UUID) (model.IssuedToken, error) {
	return j.issue(identityID, model.TokenRefresh)
}

func (j *JWT) issue(identityID uuid.UUID, class model.TokenClass) (model.IssuedToken, error) {
	key, ttl := j.keyFor(class)
	now := j.now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    identityID,
		TokenType: string(class),
	})

	tokenString, err := token.SignedString(key)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("failed to sign %s token: %w", class, err)
	}

	return model.IssuedToken{Value: tokenString, TTL: ttl, ExpiresAt: expiresAt}, nil
}

// Verify validates a token of the given class and extracts the identity ID.
// Expired tokens yield model.ErrTokenExpired; anything else that fails
// yields model.ErrTokenInvalid.
func (j *JWT) Verify(tokenString string, class model.TokenClass) (uuid.UUID, error) {
	key, _ := j.keyFor(class)
	if key == nil {
		return uuid.Nil, fmt.Errorf("%w: unknown token class %q", model.ErrTokenInvalid, class)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: %v", model.ErrTokenExpired, err)
		}
		return uuid.Nil, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return uuid.Nil, model.ErrTokenInvalid
	}
	if claims.TokenType != string(class) {
		return uuid.Nil, fmt.Errorf("%w: token type mismatch: %s", model.ErrTokenInvalid, claims.TokenType)
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: missing subject", model.ErrTokenInvalid)
	}

	return claims.UserID, nil
}

func (j *JWT) keyFor(class model.TokenClass) ([]byte, time.Duration) {
	switch class {
	case model.TokenAccess:
		return j.accessKey, j.accessTTL
	case model.TokenRefresh:
		return j.refreshKey, j.refreshTTL
	default:
		return nil, 0
	}
}
