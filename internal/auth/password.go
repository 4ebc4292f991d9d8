package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. Iterations must never decrease; stored hashes depend on it.
const (
	hashIterations = 100_000
	hashKeyLen     = 32
	saltLen        = 16
)

// HashPassword derives a PBKDF2-HMAC-SHA256 hash with a fresh random salt.
// Both values are returned hex-encoded for storage.
func HashPassword(password string) (hash, salt string, err error) {
	rawSalt := make([]byte, saltLen)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), rawSalt, hashIterations, hashKeyLen, sha256.New)
	return hex.EncodeToString(key), hex.EncodeToString(rawSalt), nil
}

// VerifyPassword recomputes the hash with the stored salt and compares in
// constant time.
func VerifyPassword(password, storedHash, storedSalt string) bool {
	rawSalt, err := hex.DecodeString(storedSalt)
	if err != nil {
		return false
	}
	rawHash, err := hex.DecodeString(storedHash)
	if err != nil {
		return false
	}

	key := pbkdf2.Key([]byte(password), rawSalt, hashIterations, hashKeyLen, sha256.New)
	return subtle.ConstantTimeCompare(key, rawHash) == 1
}
