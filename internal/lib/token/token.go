// Package token generates opaque secrets and the digests they are stored under.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const size = 32

// NewSession returns 32 random bytes as unpadded base64url.
func NewSession() (string, error) {
	b, err := random()
	if err != nil {
		return "", fmt.Errorf("token.NewSession: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewReset returns 32 random bytes as hex.
func NewReset() (string, error) {
	b, err := random()
	if err != nil {
		return "", fmt.Errorf("token.NewReset: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// Hash is the SHA-256 hex digest under which a token is persisted.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func random() ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	return b, nil
}
