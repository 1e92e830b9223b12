// Package token generates and verifies the opaque access tokens used for
// demo links. Tokens are URL-safe so they can ride in a query parameter.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the guaranteed minimum token length in characters
const MinLength = 64

// Generate returns at least length characters of cryptographically secure,
// URL-safe random data. length values below MinLength are raised to it.
func Generate(length int) (string, error) {
	if length < MinLength {
		length = MinLength
	}

	// base64 expands 3 bytes to 4 chars; over-provision and cut
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded[:length], nil
}

// Hash returns a one-way bcrypt hash of the token, used for the fallback
// lookup path. Tokens stay under bcrypt's 72-byte input limit.
func Hash(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

// Verify compares a candidate token against a stored hash in constant time
func Verify(candidate, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
