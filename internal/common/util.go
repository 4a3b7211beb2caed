package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandURLString returns a URL-safe base64 string built from size random
// bytes. Used for opaque refresh tokens; size must be large enough that
// collisions are negligible (>= 48 bytes for tokens).
func MakeRandURLString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
