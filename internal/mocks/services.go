package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/validate"
)

type VerificationService struct {
	mock.Mock
}

func (m *VerificationService) Signup(ctx context.Context, in validate.SignupInput) (model.Candidate, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Candidate), args.Error(1)
}

func (m *VerificationService) SendVerification(ctx context.Context, contact string) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *VerificationService) ReceiveVerification(ctx context.Context, code, contact string) (model.Identity, model.Session, error) {
	args := m.Called(ctx, code, contact)
	return args.Get(0).(model.Identity), args.Get(1).(model.Session), args.Error(2)
}

func (m *VerificationService) CancelVerification(ctx context.Context, contact string) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

type AuthService struct {
	mock.Mock
}

func (m *AuthService) Login(ctx context.Context, contact, password string) (model.Identity, model.Session, error) {
	args := m.Called(ctx, contact, password)
	return args.Get(0).(model.Identity), args.Get(1).(model.Session), args.Error(2)
}

func (m *AuthService) Refresh(ctx context.Context, refreshToken string) (model.IssuedToken, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(model.IssuedToken), args.Error(1)
}

func (m *AuthService) Logout(ctx context.Context, refreshToken string) {
	m.Called(ctx, refreshToken)
}

func (m *AuthService) Identity(ctx context.Context, id uuid.UUID) (model.Identity, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Identity), args.Error(1)
}

type Guard struct {
	mock.Mock
}

func (m *Guard) Authenticate(ctx context.Context, accessToken string) (model.Identity, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *Guard) RequireRole(identity model.Identity, allowed model.RoleSet) error {
	args := m.Called(identity, allowed)
	return args.Error(0)
}
