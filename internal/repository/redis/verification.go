package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var _ model.VerificationCache = (*VerificationRepository)(nil)

const (
	codePrefix     = "verifying:"
	cooldownPrefix = "verify_cooldown:"
)

// consumeCodeLua checks a code hash against verifying:<contact>.
// KEYS[1] = code key
// ARGV[1] = hex sha256 of the submitted code
// ARGV[2] = max attempts
//
// Returns 1 on success (the key is deleted), or an error string:
// "not_found", "mismatch", "attempts_exceeded".
var consumeCodeLua = goredis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'code_hash')
if not stored then
  return {err='not_found'}
end

if stored ~= ARGV[1] then
  local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
  if attempts >= tonumber(ARGV[2]) then
    redis.call('DEL', KEYS[1])
    return {err='attempts_exceeded'}
  end
  return {err='mismatch'}
end

redis.call('DEL', KEYS[1])
return 1
`)

// VerificationRepository keeps verification codes and send cooldowns.
// Only a SHA-256 of each code is stored.
type VerificationRepository struct {
	client      goredis.UniversalClient
	maxAttempts int
}

func NewVerificationRepository(client goredis.UniversalClient, maxAttempts int) *VerificationRepository {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &VerificationRepository{client: client, maxAttempts: maxAttempts}
}

func codeKey(contact model.Contact) string {
	return codePrefix + contact.Value
}

func cooldownKey(contact model.Contact) string {
	return cooldownPrefix + contact.Value
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func (r *VerificationRepository) ArmCooldown(ctx context.Context, contact model.Contact, ttl time.Duration) (bool, error) {
	armed, err := r.client.SetNX(ctx, cooldownKey(contact), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: failed to arm cooldown: %v", model.ErrCacheUnavailable, err)
	}
	return armed, nil
}

func (r *VerificationRepository) ReleaseCooldown(ctx context.Context, contact model.Contact) error {
	if err := r.client.Del(ctx, cooldownKey(contact)).Err(); err != nil {
		return fmt.Errorf("%w: failed to release cooldown: %v", model.ErrCacheUnavailable, err)
	}
	return nil
}

// StoreCode replaces any previous code for contact and resets its attempts.
func (r *VerificationRepository) StoreCode(ctx context.Context, contact model.Contact, code string, ttl time.Duration) error {
	key := codeKey(contact)
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "code_hash", hashCode(code), "attempts", 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: failed to store code: %v", model.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *VerificationRepository) ConsumeCode(ctx context.Context, contact model.Contact, code string) error {
	_, err := consumeCodeLua.Run(ctx, r.client,
		[]string{codeKey(contact)},
		hashCode(code),
		strconv.Itoa(r.maxAttempts),
	).Result()
	if err != nil {
		switch err.Error() {
		case "not_found", "mismatch", "attempts_exceeded":
			return fmt.Errorf("%w: %s", model.ErrCodeInvalid, err.Error())
		default:
			return fmt.Errorf("%w: failed to consume code: %v", model.ErrCacheUnavailable, err)
		}
	}
	return nil
}

func (r *VerificationRepository) Clear(ctx context.Context, contact model.Contact) error {
	if err := r.client.Del(ctx, codeKey(contact), cooldownKey(contact)).Err(); err != nil {
		return fmt.Errorf("%w: failed to clear verification: %v", model.ErrCacheUnavailable, err)
	}
	return nil
}
