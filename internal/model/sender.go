package model

import "context"

// Sender delivers verification codes through an out-of-band channel.
type Sender interface {
	Send(ctx context.Context, contact Contact, code string) error
}

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}
