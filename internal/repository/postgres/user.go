package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aviral-m/Backend-Project/internal/domain"
	"github.com/aviral-m/Backend-Project/pkg/database"
	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token_hash, created_at, updated_at`

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.FullName,
		u.PasswordHash,
		u.AvatarURL,
		u.CoverImageURL,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "username or email", u.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

// GetByUsernameOrEmail retrieves a user whose username or email matches the
// given identifier.
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1`
	return r.scanUser(ctx, query, identifier)
}

// Update modifies an existing user's profile fields in the database.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, email = $2, full_name = $3, password_hash = $4,
		    avatar_url = $5, cover_image_url = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		u.Username,
		u.Email,
		u.FullName,
		u.PasswordHash,
		u.AvatarURL,
		u.CoverImageURL,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "username or email", u.Username)
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID.String())
	}

	return nil
}

// SetRefreshTokenHash stores the refresh token hash for the user. A nil hash
// clears the persisted session.
func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash *string) error {
	query := `UPDATE users SET refresh_token_hash = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, hash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set refresh token hash: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id.String())
	}

	return nil
}

// RotateRefreshTokenHash swaps the stored hash from oldHash to newHash in a
// single compare-and-set statement. When zero rows match, the presented token
// has already been rotated (or the session was cleared) and ErrNotFound is
// returned so the caller can reject the refresh.
func (r *UserRepository) RotateRefreshTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash string) error {
	query := `
		UPDATE users
		SET refresh_token_hash = $1, updated_at = $2
		WHERE id = $3 AND refresh_token_hash = $4`

	ct, err := r.db.Exec(ctx, query, newHash, time.Now().UTC(), id, oldHash)
	if err != nil {
		return fmt.Errorf("rotate refresh token hash: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// scanUser executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.AvatarURL,
		&u.CoverImageURL,
		&u.RefreshTokenHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
