package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account in the system. PasswordHash and
// RefreshTokenHash never appear in JSON responses.
type User struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	PasswordHash     string    `json:"-"`
	AvatarURL        string    `json:"avatar_url"`
	CoverImageURL    string    `json:"cover_image_url,omitempty"`
	RefreshTokenHash *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
