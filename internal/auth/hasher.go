package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 32
	keyLength  = 32
	iterations = 100000
)

// PasswordHash holds a derived key and the salt it was derived with,
// both base64-encoded for storage.
type PasswordHash struct {
	Hash string
	Salt string
}

// HashPassword derives a PBKDF2-SHA512 key from the password using a
// fresh random salt.
func HashPassword(password string) (PasswordHash, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return PasswordHash{}, fmt.Errorf("HashPassword: generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha512.New)
	return PasswordHash{
		Hash: base64.StdEncoding.EncodeToString(key),
		Salt: base64.StdEncoding.EncodeToString(salt),
	}, nil
}

// VerifyPassword re-derives the key with the stored salt and compares it
// against the stored hash in constant time.
func VerifyPassword(password string, stored PasswordHash) (bool, error) {
	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return false, fmt.Errorf("VerifyPassword: decoding salt: %w", err)
	}
	want, err := base64.StdEncoding.DecodeString(stored.Hash)
	if err != nil {
		return false, fmt.Errorf("VerifyPassword: decoding hash: %w", err)
	}

	got := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
