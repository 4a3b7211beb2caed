// Package services contains the API server's business logic. This file
// implements UserService: registration, login, and the refresh-token
// lifecycle (issue, single-use rotation, logout).
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/recipecorner/recipecorner/internal/api/config"
	"github.com/recipecorner/recipecorner/internal/api/models"
	"github.com/recipecorner/recipecorner/internal/api/repositories/repomanager"
	"github.com/recipecorner/recipecorner/internal/common"
	"github.com/recipecorner/recipecorner/internal/tokens"
)

// Role names embedded as claims. Registration assigns exactly one of them.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// TokenTriple is the output contract of every successful issue or refresh:
// a signed access token, the opaque refresh token, and the access expiry.
type TokenTriple struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// AuthResult is what the auth endpoints return: the token triple plus the
// identity fields the front end caches in its session.
type AuthResult struct {
	Token           TokenTriple
	FullName        string
	Email           string
	ProfileImageURL string
	Roles           []string
}

// ProfileImageStore saves an uploaded profile image and returns its URL.
type ProfileImageStore interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// UserService owns the identity's credential fields. All transitions between
// NoSession, Active, and Expired go through it; nothing else writes
// refresh_token or refresh_token_expiry.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	encoder                      *tokens.Encoder
	images                       ProfileImageStore
	refreshTokenValidityDuration time.Duration
	adminSecretCode              string
}

// NewUserService constructs a UserService. The encoder must come from
// tokens.NewEncoder, which has already validated the signing setup.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, encoder *tokens.Encoder, images ProfileImageStore, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		encoder:                      encoder,
		images:                       images,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		adminSecretCode:              cfg.AdminSecretCode,
	}
}

// Register creates a user and issues their first token triple. A secret code
// matching the configured admin code elevates the account to the Admin role;
// this is the only branch deciding which roles get embedded in tokens.
// The optional profile image is stored before the user row is created.
func (s *UserService) Register(ctx context.Context, fullName, email, password, secretCode, imageName string, imageData []byte) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var imageURL string
	if len(imageData) > 0 {
		imageURL, err = s.images.Upload(ctx, imageName, imageData)
		if err != nil {
			return nil, err
		}
	}

	roles := []string{RoleUser}
	if s.adminSecretCode != "" && subtle.ConstantTimeCompare([]byte(secretCode), []byte(s.adminSecretCode)) == 1 {
		roles = []string{RoleAdmin}
	}

	user := &models.User{
		Email:           email,
		FullName:        fullName,
		PasswordHash:    string(hash),
		ProfileImageURL: imageURL,
		Roles:           roles,
	}
	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, common.ErrUpstreamUnavailable
	}

	return s.issue(ctx, user)
}

// Login verifies credentials and issues a fresh token triple. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrUpstreamUnavailable
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Refresh rotates the refresh token named by candidate and mints a new
// access token. Rotation is single-use: the repository's compare-and-update
// succeeds for exactly one caller per stored token value, so a replayed or
// concurrent candidate fails with ErrInvalidRefreshToken and changes nothing.
func (s *UserService) Refresh(ctx context.Context, candidate string) (*AuthResult, error) {
	newRefresh, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	now := time.Now()
	repo := s.repomanager.Users(s.db)
	user, err := repo.RotateRefreshToken(ctx, candidate, newRefresh, now.Add(s.refreshTokenValidityDuration), now)
	if err != nil {
		if errors.Is(err, common.ErrInvalidRefreshToken) {
			return nil, common.ErrInvalidRefreshToken
		}
		// A timeout or unreachable store is a failure, never an implicit
		// success; the caller keeps its old state and may retry.
		return nil, common.ErrUpstreamUnavailable
	}

	access, expiresAt, err := s.encoder.Encode(user.ID, user.Email, user.FullName, user.Roles, now)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return s.authResult(user, access, newRefresh, expiresAt), nil
}

// Logout invalidates the refresh token, moving the identity to NoSession.
// It compare-and-clears against the stored token value, so it cannot wipe a
// token that a concurrent refresh already rotated past. Idempotent.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.ClearRefreshToken(ctx, refreshToken); err != nil {
		return common.ErrUpstreamUnavailable
	}
	return nil
}

// issue mints a fresh triple and unconditionally overwrites any stored
// refresh token. Used by register and login, which enter Active from any
// prior state.
func (s *UserService) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	now := time.Now()
	access, expiresAt, err := s.encoder.Encode(user.ID, user.Email, user.FullName, user.Roles, now)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.SetRefreshToken(ctx, user.ID, refresh, now.Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrUpstreamUnavailable
	}

	return s.authResult(user, access, refresh, expiresAt), nil
}

func (s *UserService) authResult(user *models.User, access, refresh string, expiresAt time.Time) *AuthResult {
	return &AuthResult{
		Token: TokenTriple{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    expiresAt,
		},
		FullName:        user.FullName,
		Email:           user.Email,
		ProfileImageURL: user.ProfileImageURL,
		Roles:           user.Roles,
	}
}
