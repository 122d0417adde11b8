package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// newNumericCode returns a uniformly random string of n decimal digits.
func newNumericCode(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("invalid code length %d", n)
	}

	var b strings.Builder
	b.Grow(n)

	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}

	return b.String(), nil
}
