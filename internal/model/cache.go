package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionCache keeps the single live refresh token of every identity.
type SessionCache interface {
	// Put overwrites any previous token for the identity.
	Put(ctx context.Context, identityID uuid.UUID, refreshToken string, ttl time.Duration) error
	Get(ctx context.Context, identityID uuid.UUID) (string, error)
	Delete(ctx context.Context, identityID uuid.UUID) error
}

// VerificationCache holds one-time codes and send throttling markers.
type VerificationCache interface {
	// ArmCooldown returns false when a cooldown for contact is already running.
	ArmCooldown(ctx context.Context, contact Contact, ttl time.Duration) (bool, error)
	ReleaseCooldown(ctx context.Context, contact Contact) error
	StoreCode(ctx context.Context, contact Contact, code string, ttl time.Duration) error
	// ConsumeCode deletes the code on success and returns ErrCodeInvalid otherwise.
	ConsumeCode(ctx context.Context, contact Contact, code string) error
	// Clear removes the code and the cooldown marker.
	Clear(ctx context.Context, contact Contact) error
}
