package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/aviral-m/Backend-Project/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsernameOrEmail retrieves a user whose username or email matches
	// the given identifier.
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// SetRefreshTokenHash stores the hash of the user's current refresh
	// token. A nil hash clears the session.
	SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash *string) error

	// RotateRefreshTokenHash atomically swaps the stored refresh token hash
	// from oldHash to newHash. It fails with ErrNotFound when the stored
	// hash no longer equals oldHash, which means the token was already
	// rotated or the session was cleared.
	RotateRefreshTokenHash(ctx context.Context, id uuid.UUID, oldHash, newHash string) error
}

// SortOrder values accepted by ListVideosParams.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListVideosParams narrows and orders a video listing.
type ListVideosParams struct {
	OwnerID   *uuid.UUID
	Query     string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// VideoRepository defines the interface for video persistence operations.
type VideoRepository interface {
	// Create inserts a new video into the store.
	Create(ctx context.Context, video *domain.Video) error

	// GetByID retrieves a video by its unique identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error)

	// List returns published videos matching the given parameters along
	// with the total count before pagination.
	List(ctx context.Context, params ListVideosParams) ([]domain.Video, int, error)

	// Update modifies an existing video in the store.
	Update(ctx context.Context, video *domain.Video) error

	// Delete removes a video from the store by its identifier.
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementViews bumps the view counter for the given video.
	IncrementViews(ctx context.Context, id uuid.UUID) error
}
