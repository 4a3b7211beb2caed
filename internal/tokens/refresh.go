package tokens

import "github.com/recipecorner/recipecorner/internal/common"

// refreshTokenBytes is the entropy of an opaque refresh token. 48 random
// bytes make collisions negligible, so generated tokens are treated as unique.
const refreshTokenBytes = 48

// NewRefreshToken returns a new opaque refresh token: 48 bytes from the OS
// CSPRNG, URL-safe base64 encoded. Never derived from user-visible data.
func NewRefreshToken() (string, error) {
	return common.MakeRandURLString(refreshTokenBytes)
}
