package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/recipecorner/recipecorner/internal/api/models"
	"github.com/recipecorner/recipecorner/internal/common"
	"github.com/recipecorner/recipecorner/internal/dbx"
)

// uniqueViolation is the postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, full_name, password_hash, profile_image_url, roles)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.FullName, user.PasswordHash, user.ProfileImageURL, joinRoles(user.Roles)).
		Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, full_name, password_hash, profile_image_url, roles,
		       refresh_token, refresh_token_expiry
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// SetRefreshToken is the unconditional overwrite used on register/login.
// Any previously stored token becomes invalid because exact-match lookups
// can no longer find it.
func (r *PostgresRepository) SetRefreshToken(ctx context.Context, userID, token string, expiry time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $2, refresh_token_expiry = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, token, expiry)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// RotateRefreshToken performs the single-statement compare-and-update that
// makes rotation linearizable: the WHERE clause keys on the old token value
// and its expiry, so a concurrent rotation of the same candidate matches
// zero rows and fails. An expiry exactly equal to now is already expired.
func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, oldToken, newToken string, expiry, now time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET refresh_token = $2, refresh_token_expiry = $3
		WHERE refresh_token = $1 AND refresh_token_expiry > $4
		RETURNING id, email, full_name, password_hash, profile_image_url, roles,
		          refresh_token, refresh_token_expiry
	`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, oldToken, newToken, expiry, now))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, err
	}
	return user, nil
}

// ClearRefreshToken compare-and-clears against the stored token value, the
// same primitive rotation uses, so a logout racing a rotation cannot wipe
// the rotated-to token. Zero affected rows means someone else already moved
// the token on; logout stays idempotent.
func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, token string) error {
	query := `
		UPDATE users
		SET refresh_token = NULL, refresh_token_expiry = NULL
		WHERE refresh_token = $1
	`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var roles string
	err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash,
		&user.ProfileImageURL, &roles, &user.RefreshToken, &user.RefreshTokenExpiry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.Roles = splitRoles(roles)
	return user, nil
}

func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func splitRoles(roles string) []string {
	if roles == "" {
		return nil
	}
	return strings.Split(roles, ",")
}
