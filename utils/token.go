package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// NewShareToken returns an unguessable share token: 24 random bytes from the
// CSPRNG rendered as URL-safe base64 (32 characters). Uniqueness is enforced
// by the database index, not here; callers retry on collision.
func NewShareToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
