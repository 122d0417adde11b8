package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var (
	_ model.SessionCache      = (*SessionCache)(nil)
	_ model.VerificationCache = (*VerificationCache)(nil)
)

type SessionCache struct {
	mock.Mock
}

func (m *SessionCache) Put(ctx context.Context, identityID uuid.UUID, refreshToken string, ttl time.Duration) error {
	args := m.Called(ctx, identityID, refreshToken, ttl)
	return args.Error(0)
}

func (m *SessionCache) Get(ctx context.Context, identityID uuid.UUID) (string, error) {
	args := m.Called(ctx, identityID)
	return args.String(0), args.Error(1)
}

func (m *SessionCache) Delete(ctx context.Context, identityID uuid.UUID) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}

type VerificationCache struct {
	mock.Mock
}

func (m *VerificationCache) ArmCooldown(ctx context.Context, contact model.Contact, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, contact, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *VerificationCache) ReleaseCooldown(ctx context.Context, contact model.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *VerificationCache) StoreCode(ctx context.Context, contact model.Contact, code string, ttl time.Duration) error {
	args := m.Called(ctx, contact, code, ttl)
	return args.Error(0)
}

func (m *VerificationCache) ConsumeCode(ctx context.Context, contact model.Contact, code string) error {
	args := m.Called(ctx, contact, code)
	return args.Error(0)
}

func (m *VerificationCache) Clear(ctx context.Context, contact model.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}
