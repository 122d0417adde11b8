// Package password hashes account passwords with argon2id.
//
// Hashes are stored in PHC string format. Legacy bcrypt hashes are still
// accepted by Compare so that imported accounts keep working.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/farmgate-identity/internal/model"
)

const (
	saltLength = 16
	keyLength  = 32

	minMemoryKiB = 8 * 1024
)

var _ model.PasswordHasher = (*Argon2)(nil)

var ErrMalformedHash = errors.New("malformed password hash")

// Params are the argon2id cost parameters.
type Params struct {
	Time   uint32
	MemKiB uint32
	Par    uint8
}

// Argon2 implements model.PasswordHasher.
type Argon2 struct {
	params Params
}

func NewArgon2(params Params) (*Argon2, error) {
	if params.Time < 1 {
		return nil, fmt.Errorf("argon2 time must be positive")
	}
	if params.MemKiB < minMemoryKiB {
		return nil, fmt.Errorf("argon2 memory must be at least %d KiB", minMemoryKiB)
	}
	if params.Par < 1 {
		return nil, fmt.Errorf("argon2 parallelism must be positive")
	}
	return &Argon2{params: params}, nil
}

func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.params.Time, a.params.MemKiB, a.params.Par, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.params.MemKiB, a.params.Time, a.params.Par,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Compare reports whether password matches hash. A malformed hash is an error,
// a mismatch is not.
func (a *Argon2) Compare(hash, password string) (bool, error) {
	if isBcrypt(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
		return true, nil
	}

	p, salt, key, err := decode(hash)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey([]byte(password), salt, p.Time, p.MemKiB, p.Par, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func decode(hash string) (Params, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemKiB, &p.Time, &p.Par); err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	if p.Time < 1 || p.MemKiB < 1 || p.Par < 1 {
		return Params{}, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, ErrMalformedHash
	}

	return p, salt, key, nil
}
