// Package crypto implements the salted password hashing the credential
// store persists and the authorization guard verifies.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// SaltLen is the size of a freshly generated salt in bytes.
const SaltLen = 32

// SaltedHash generates a fresh random salt and returns the password's
// salted digest plus the salt, both base64-encoded.
func SaltedHash(password string) (hash, salt string, err error) {
	raw := make([]byte, SaltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	salt = base64.StdEncoding.EncodeToString(raw)

	hash, err = ComputeHash(salt, password)
	if err != nil {
		return "", "", err
	}
	return hash, salt, nil
}

// ComputeHash returns base64(sha256(password || salt)) for a
// base64-encoded salt.
func ComputeHash(salt, password string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}

	digest := sha256.New()
	digest.Write([]byte(password))
	digest.Write(raw)
	return base64.StdEncoding.EncodeToString(digest.Sum(nil)), nil
}

// Verify reports whether password matches the stored hash and salt. A
// salt that fails to decode counts as a mismatch, never an error.
func Verify(password, hash, salt string) bool {
	computed, err := ComputeHash(salt, password)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
