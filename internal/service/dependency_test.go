package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/mocks"
	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/testutil"
)

func TestVerification_Signup_HashFailure(t *testing.T) {
	identities := &mocks.IdentityStore{}
	staging := &mocks.StagingStore{}
	hasher := &mocks.PasswordHasher{}
	markers := &mocks.VerificationCache{}

	identities.On("GetByContact", mock.Anything, anaEmail).Return(model.Identity{}, model.ErrNotFound)
	staging.On("GetByContact", mock.Anything, anaEmail).Return(model.Candidate{}, model.ErrNotFound)
	hasher.On("Hash", "secret").Return("", errors.New("out of memory"))
	markers.On("Clear", mock.Anything, anaEmail).Return(nil)

	svc := NewVerification(identities, staging, markers, &mocks.Sender{}, hasher, nil,
		testVerificationConfig(), testutil.MakeNoopLogger())

	_, err := svc.Signup(context.Background(), anaSignup())
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInternal))

	staging.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	identities.AssertExpectations(t)
	hasher.AssertExpectations(t)
	markers.AssertExpectations(t)
}

func TestVerification_SendVerification_CodeStoreFailure(t *testing.T) {
	staging := &mocks.StagingStore{}
	markers := &mocks.VerificationCache{}
	sender := &mocks.Sender{}

	staging.On("GetByContact", mock.Anything, anaEmail).Return(model.Candidate{}, nil)
	markers.On("ArmCooldown", mock.Anything, anaEmail, time.Minute).Return(true, nil)
	markers.On("StoreCode", mock.Anything, anaEmail, mock.AnythingOfType("string"), 10*time.Minute).
		Return(model.ErrCacheUnavailable)
	markers.On("ReleaseCooldown", mock.Anything, anaEmail).Return(nil)

	svc := NewVerification(&mocks.IdentityStore{}, staging, markers, sender, &mocks.PasswordHasher{}, nil,
		testVerificationConfig(), testutil.MakeNoopLogger())

	err := svc.SendVerification(context.Background(), "ana@x.com")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindDependency))

	// The caller may retry at once; nothing was delivered.
	markers.AssertExpectations(t)
	markers.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerification_SendVerification_CooldownStoreDown(t *testing.T) {
	staging := &mocks.StagingStore{}
	markers := &mocks.VerificationCache{}
	sender := &mocks.Sender{}

	staging.On("GetByContact", mock.Anything, anaEmail).Return(model.Candidate{}, nil)
	markers.On("ArmCooldown", mock.Anything, anaEmail, time.Minute).Return(false, model.ErrCacheUnavailable)

	svc := NewVerification(&mocks.IdentityStore{}, staging, markers, sender, &mocks.PasswordHasher{}, nil,
		testVerificationConfig(), testutil.MakeNoopLogger())

	err := svc.SendVerification(context.Background(), "ana@x.com")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindDependency))
	assert.Equal(t, "Service temporarily unavailable", err.Error())
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuth_Login_DependencyFailures(t *testing.T) {
	id := uuid.New()
	identity := model.Identity{ID: id, Email: "ana@x.com", PasswordHash: "hash", Role: model.RoleBuyer}

	t.Run("hasher failure", func(t *testing.T) {
		identities := &mocks.IdentityStore{}
		hasher := &mocks.PasswordHasher{}
		manager := &mocks.TokenManager{}
		markers := &mocks.VerificationCache{}

		identities.On("GetByContact", mock.Anything, anaEmail).Return(identity, nil)
		hasher.On("Compare", "hash", "secret").Return(false, errors.New("corrupt hash"))

		tokens := NewTokenService(manager, &mocks.SessionCache{}, testutil.MakeNoopLogger())
		svc := NewAuth(identities, hasher, markers, tokens, testutil.MakeNoopLogger())

		_, _, err := svc.Login(context.Background(), "ana@x.com", "secret")
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindInternal))
		manager.AssertNotCalled(t, "IssueAccessToken", mock.Anything)
		markers.AssertNotCalled(t, "ReleaseCooldown", mock.Anything, mock.Anything)
	})

	t.Run("cooldown release failure keeps session", func(t *testing.T) {
		identities := &mocks.IdentityStore{}
		hasher := &mocks.PasswordHasher{}
		manager := &mocks.TokenManager{}
		sessions := &mocks.SessionCache{}
		markers := &mocks.VerificationCache{}

		access := model.IssuedToken{Value: "access", TTL: 15 * time.Minute}
		refresh := model.IssuedToken{Value: "refresh", TTL: 7 * 24 * time.Hour}

		identities.On("GetByContact", mock.Anything, anaEmail).Return(identity, nil)
		hasher.On("Compare", "hash", "secret").Return(true, nil)
		manager.On("IssueAccessToken", id).Return(access, nil)
		manager.On("IssueRefreshToken", id).Return(refresh, nil)
		sessions.On("Put", mock.Anything, id, "refresh", refresh.TTL).Return(nil)
		markers.On("ReleaseCooldown", mock.Anything, anaEmail).Return(model.ErrCacheUnavailable)

		tokens := NewTokenService(manager, sessions, testutil.MakeNoopLogger())
		svc := NewAuth(identities, hasher, markers, tokens, testutil.MakeNoopLogger())

		got, session, err := svc.Login(context.Background(), "ana@x.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "access", session.Access.Value)
		assert.Equal(t, "refresh", session.Refresh.Value)

		sessions.AssertExpectations(t)
		markers.AssertExpectations(t)
	})
}
