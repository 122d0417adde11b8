package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/testutil"
)

var ana = model.Contact{Kind: model.ContactEmail, Value: "ana@x.com"}

func TestVerificationRepository_Cooldown(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	repo := NewVerificationRepository(rdb, 5)

	armed, err := repo.ArmCooldown(ctx, ana, time.Minute)
	require.NoError(t, err)
	assert.True(t, armed)
	assert.True(t, mr.Exists("verify_cooldown:ana@x.com"))

	armed, err = repo.ArmCooldown(ctx, ana, time.Minute)
	require.NoError(t, err)
	assert.False(t, armed)

	mr.FastForward(61 * time.Second)
	armed, err = repo.ArmCooldown(ctx, ana, time.Minute)
	require.NoError(t, err)
	assert.True(t, armed)

	require.NoError(t, repo.ReleaseCooldown(ctx, ana))
	armed, err = repo.ArmCooldown(ctx, ana, time.Minute)
	require.NoError(t, err)
	assert.True(t, armed)
}

func TestVerificationRepository_StoreAndConsume(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	repo := NewVerificationRepository(rdb, 5)

	require.NoError(t, repo.StoreCode(ctx, ana, "123456", 10*time.Minute))
	assert.True(t, mr.Exists("verifying:ana@x.com"))
	assert.NotEqual(t, "123456", mr.HGet("verifying:ana@x.com", "code_hash"))

	err := repo.ConsumeCode(ctx, ana, "000000")
	require.ErrorIs(t, err, model.ErrCodeInvalid)

	require.NoError(t, repo.ConsumeCode(ctx, ana, "123456"))
	assert.False(t, mr.Exists("verifying:ana@x.com"))

	// Codes are single use.
	err = repo.ConsumeCode(ctx, ana, "123456")
	require.ErrorIs(t, err, model.ErrCodeInvalid)
}

func TestVerificationRepository_CodeExpires(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	repo := NewVerificationRepository(rdb, 5)

	require.NoError(t, repo.StoreCode(ctx, ana, "123456", 10*time.Minute))
	mr.FastForward(11 * time.Minute)

	err := repo.ConsumeCode(ctx, ana, "123456")
	require.ErrorIs(t, err, model.ErrCodeInvalid)
}

func TestVerificationRepository_AttemptsExceeded(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	repo := NewVerificationRepository(rdb, 3)

	require.NoError(t, repo.StoreCode(ctx, ana, "123456", 10*time.Minute))
	for i := 0; i < 3; i++ {
		require.ErrorIs(t, repo.ConsumeCode(ctx, ana, "999999"), model.ErrCodeInvalid)
	}
	assert.False(t, mr.Exists("verifying:ana@x.com"))

	// The right code no longer works once attempts are used up.
	require.ErrorIs(t, repo.ConsumeCode(ctx, ana, "123456"), model.ErrCodeInvalid)
}

func TestVerificationRepository_StoreResetsAttempts(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	repo := NewVerificationRepository(rdb, 5)

	require.NoError(t, repo.StoreCode(ctx, ana, "111111", 10*time.Minute))
	require.ErrorIs(t, repo.ConsumeCode(ctx, ana, "999999"), model.ErrCodeInvalid)
	assert.Equal(t, "1", mr.HGet("verifying:ana@x.com", "attempts"))

	require.NoError(t, repo.StoreCode(ctx, ana, "222222", 10*time.Minute))
	assert.Equal(t, "0", mr.HGet("verifying:ana@x.com", "attempts"))
	require.ErrorIs(t, repo.ConsumeCode(ctx, ana, "111111"), model.ErrCodeInvalid)
	require.NoError(t, repo.ConsumeCode(ctx, ana, "222222"))
}

func TestVerificationRepository_Clear(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	repo := NewVerificationRepository(rdb, 5)

	require.NoError(t, repo.StoreCode(ctx, ana, "123456", 10*time.Minute))
	_, err := repo.ArmCooldown(ctx, ana, time.Minute)
	require.NoError(t, err)

	require.NoError(t, repo.Clear(ctx, ana))
	assert.False(t, mr.Exists("verifying:ana@x.com"))
	assert.False(t, mr.Exists("verify_cooldown:ana@x.com"))
}

func TestVerificationRepository_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	repo := NewVerificationRepository(rdb, 5)
	mr.Close()

	_, err := repo.ArmCooldown(ctx, ana, time.Minute)
	require.ErrorIs(t, err, model.ErrCacheUnavailable)

	err = repo.ConsumeCode(ctx, ana, "123456")
	require.ErrorIs(t, err, model.ErrCacheUnavailable)
	require.NotErrorIs(t, err, model.ErrCodeInvalid)
}
