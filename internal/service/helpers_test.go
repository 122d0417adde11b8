package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/farmgate-identity/internal/mocks"
	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/password"
	redisrepo "github.com/dtroode/farmgate-identity/internal/repository/redis"
	"github.com/dtroode/farmgate-identity/internal/testutil"
	"github.com/dtroode/farmgate-identity/internal/token"
)

var (
	anaEmail = model.Contact{Kind: model.ContactEmail, Value: "ana@x.com"}
	anaPhone = model.Contact{Kind: model.ContactPhone, Value: "+14155550123"}
)

func testVerificationConfig() VerificationConfig {
	return VerificationConfig{
		StagingWindow: 20 * time.Minute,
		CodeTTL:       10 * time.Minute,
		Cooldown:      time.Minute,
		CodeLength:    6,
	}
}

func newTestHasher(t *testing.T) *password.Argon2 {
	t.Helper()
	h, err := password.NewArgon2(password.Params{Time: 1, MemKiB: 8 * 1024, Par: 1})
	require.NoError(t, err)
	return h
}

func newTestJWT(t *testing.T) *token.JWT {
	t.Helper()
	j, err := token.NewJWT("test-access", "test-refresh")
	require.NoError(t, err)
	return j
}

type fixture struct {
	mr         *miniredis.Miniredis
	identities *mocks.IdentityStore
	staging    *mocks.StagingStore
	sender     *mocks.Sender
	sessions   *redisrepo.SessionRepository
	markers    *redisrepo.VerificationRepository
	hasher     *password.Argon2
	jwt        *token.JWT
	tokens     *TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr, rdb := testutil.NewRedis(t)
	log := testutil.MakeNoopLogger()

	f := &fixture{
		mr:         mr,
		identities: &mocks.IdentityStore{},
		staging:    &mocks.StagingStore{},
		sender:     &mocks.Sender{},
		sessions:   redisrepo.NewSessionRepository(rdb),
		markers:    redisrepo.NewVerificationRepository(rdb, 5),
		hasher:     newTestHasher(t),
		jwt:        newTestJWT(t),
	}
	f.tokens = NewTokenService(f.jwt, f.sessions, log)

	return f
}

func (f *fixture) verification() *Verification {
	return NewVerification(f.identities, f.staging, f.markers, f.sender, f.hasher, f.tokens,
		testVerificationConfig(), testutil.MakeNoopLogger())
}

func (f *fixture) auth() *Auth {
	return NewAuth(f.identities, f.hasher, f.markers, f.tokens, testutil.MakeNoopLogger())
}
