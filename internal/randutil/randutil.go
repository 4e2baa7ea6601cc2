// Package randutil generates random tokens from crypto/rand.
package randutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Alphanumeric is the 62-symbol alphabet used for magic tokens and passwords.
	Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// LowerAlphanumeric is used for disposable login names.
	LowerAlphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"
	// Digits is used for verification codes.
	Digits = "0123456789"
)

// String returns n characters drawn uniformly from alphabet.
func String(n int, alphabet string) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("negative length: %d", n)
	}
	if alphabet == "" {
		return "", fmt.Errorf("alphabet is empty")
	}

	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// MustString is like String but panics when the system entropy source fails.
func MustString(n int, alphabet string) string {
	s, err := String(n, alphabet)
	if err != nil {
		panic(err)
	}
	return s
}
