package domain

import (
	"time"

	"github.com/google/uuid"
)

// Allowed content types for video file uploads.
var AllowedVideoContentTypes = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
	"video/ogg":  true,
}

// Allowed content types for image uploads (avatars, covers, thumbnails).
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Upload size limits in bytes.
const (
	MaxVideoFileSize int64 = 200 * 1024 * 1024
	MaxImageFileSize int64 = 10 * 1024 * 1024
)

// Video represents an uploaded video and its metadata.
type Video struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	VideoURL        string    `json:"video_url"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationSeconds float64   `json:"duration_seconds"`
	Views           int64     `json:"views"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsAllowedVideoContentType checks whether the content type is an accepted
// video format.
func IsAllowedVideoContentType(contentType string) bool {
	return AllowedVideoContentTypes[contentType]
}

// IsAllowedImageContentType checks whether the content type is an accepted
// image format.
func IsAllowedImageContentType(contentType string) bool {
	return AllowedImageContentTypes[contentType]
}
