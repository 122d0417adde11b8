package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var _ model.SessionCache = (*SessionRepository)(nil)

const sessionPrefix = "refreshToken:"

// SessionRepository stores one refresh token per identity.
type SessionRepository struct {
	client goredis.UniversalClient
}

func NewSessionRepository(client goredis.UniversalClient) *SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(identityID uuid.UUID) string {
	return sessionPrefix + identityID.String()
}

func (r *SessionRepository) Put(ctx context.Context, identityID uuid.UUID, refreshToken string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(identityID), refreshToken, ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to store session: %v", model.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, identityID uuid.UUID) (string, error) {
	token, err := r.client.Get(ctx, sessionKey(identityID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("%w: failed to read session: %v", model.ErrCacheUnavailable, err)
	}
	return token, nil
}

func (r *SessionRepository) Delete(ctx context.Context, identityID uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(identityID)).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete session: %v", model.ErrCacheUnavailable, err)
	}
	return nil
}
