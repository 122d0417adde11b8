// Package mocks holds testify mocks of the model interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var (
	_ model.IdentityStore = (*IdentityStore)(nil)
	_ model.StagingStore  = (*StagingStore)(nil)
)

type IdentityStore struct {
	mock.Mock
}

func (m *IdentityStore) GetByContact(ctx context.Context, contact model.Contact) (model.Identity, error) {
	args := m.Called(ctx, contact)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *IdentityStore) GetByID(ctx context.Context, id uuid.UUID) (model.Identity, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *IdentityStore) Create(ctx context.Context, identity model.Identity) (model.Identity, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(model.Identity), args.Error(1)
}

type StagingStore struct {
	mock.Mock
}

func (m *StagingStore) Create(ctx context.Context, candidate model.Candidate) error {
	args := m.Called(ctx, candidate)
	return args.Error(0)
}

func (m *StagingStore) GetByContact(ctx context.Context, contact model.Contact) (model.Candidate, error) {
	args := m.Called(ctx, contact)
	return args.Get(0).(model.Candidate), args.Error(1)
}

func (m *StagingStore) Promote(ctx context.Context, contact model.Contact) (model.Identity, error) {
	args := m.Called(ctx, contact)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *StagingStore) DeleteByContact(ctx context.Context, contact model.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *StagingStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
