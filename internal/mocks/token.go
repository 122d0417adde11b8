package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var (
	_ model.TokenManager   = (*TokenManager)(nil)
	_ model.Sender         = (*Sender)(nil)
	_ model.PasswordHasher = (*PasswordHasher)(nil)
)

type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) IssueAccessToken(identityID uuid.UUID) (model.IssuedToken, error) {
	args := m.Called(identityID)
	return args.Get(0).(model.IssuedToken), args.Error(1)
}

func (m *TokenManager) IssueRefreshToken(identityID uuid.UUID) (model.IssuedToken, error) {
	args := m.Called(identityID)
	return args.Get(0).(model.IssuedToken), args.Error(1)
}

func (m *TokenManager) Verify(token string, class model.TokenClass) (uuid.UUID, error) {
	args := m.Called(token, class)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type Sender struct {
	mock.Mock
}

func (m *Sender) Send(ctx context.Context, contact model.Contact, code string) error {
	args := m.Called(ctx, contact, code)
	return args.Error(0)
}

type PasswordHasher struct {
	mock.Mock
}

func (m *PasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *PasswordHasher) Compare(hash, password string) (bool, error) {
	args := m.Called(hash, password)
	return args.Bool(0), args.Error(1)
}
