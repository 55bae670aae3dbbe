// Package pwdhash stores passwords as argon2id digests.
//
// An encoded hash is base64 of 1 byte of version, 16 bytes of salt and
// 32 bytes of argon2id output.
package pwdhash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/crypto/argon2"
)

// argon2id(t=2, m=19MiB, p=1)
const (
	hashVersion1 = 1
	saltSizeV1   = 16
	keySizeV1    = 32
	timeV1       = 2
	memoryV1     = 19 * 1024
	threadsV1    = 1
	hashLenV1    = 1 + saltSizeV1 + keySizeV1
)

var dummyHash = sync.OnceValue(func() []byte {
	return hashWithSalt(make([]byte, saltSizeV1), "campus-delivery-dummy")
})

// Hash returns the encoded argon2id hash of password with a fresh random salt.
func Hash(password string) (string, error) {
	const op = "pwdhash.Hash"

	salt := make([]byte, saltSizeV1)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawStdEncoding.EncodeToString(hashWithSalt(salt, password)), nil
}

// Verify reports whether password matches the encoded hash.
// Malformed or unknown-version hashes never match.
func Verify(password, encoded string) bool {
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != hashLenV1 || raw[0] != hashVersion1 {
		return false
	}

	return verifyRaw(password, raw)
}

// VerifyDummy burns the same amount of work as Verify against a fixed hash.
// Used when there is no stored hash to compare with.
func VerifyDummy(password string) {
	_ = verifyRaw(password, dummyHash())
}

func verifyRaw(password string, raw []byte) bool {
	salt := raw[1 : 1+saltSizeV1]
	key := argon2.IDKey([]byte(password), salt, timeV1, memoryV1, threadsV1, keySizeV1)

	return subtle.ConstantTimeCompare(key, raw[1+saltSizeV1:]) == 1
}

func hashWithSalt(salt []byte, password string) []byte {
	key := argon2.IDKey([]byte(password), salt, timeV1, memoryV1, threadsV1, keySizeV1)

	final := make([]byte, hashLenV1)
	final[0] = hashVersion1
	copy(final[1:1+saltSizeV1], salt)
	copy(final[1+saltSizeV1:], key)

	return final
}
