// Package users declares the repository contract for identity records,
// including the two credential fields owned by the token lifecycle:
// refresh_token and refresh_token_expiry.
package users

import (
	"context"
	"time"

	"github.com/recipecorner/recipecorner/internal/api/models"
)

// Repository defines persistence operations for users. The refresh-token
// methods are the only writers of the credential fields; all of them are
// single atomic statements so concurrent callers serialize in the database.
type Repository interface {
	// Create inserts a new user and returns it with the generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given email, or ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// SetRefreshToken unconditionally overwrites the user's refresh token
	// and expiry. Used by Issue (register/login), which supersedes any
	// prior session state.
	SetRefreshToken(ctx context.Context, userID, token string, expiry time.Time) error

	// RotateRefreshToken atomically replaces oldToken with newToken for
	// whichever user currently holds oldToken with an expiry after now.
	// Exactly one concurrent caller can win; the rest (and unknown or
	// expired candidates) get ErrInvalidRefreshToken.
	RotateRefreshToken(ctx context.Context, oldToken, newToken string, expiry, now time.Time) (*models.User, error)

	// ClearRefreshToken compare-and-clears the credential fields for the
	// user currently holding token. Clearing a token nobody holds is not
	// an error, which makes logout idempotent.
	ClearRefreshToken(ctx context.Context, token string) error
}
