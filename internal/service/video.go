package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/aviral-m/Backend-Project/internal/domain"
	"github.com/aviral-m/Backend-Project/internal/event"
	"github.com/aviral-m/Backend-Project/internal/repository"
	"github.com/aviral-m/Backend-Project/internal/storage"
	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
)

// VideoService implements the business logic for video operations.
type VideoService struct {
	videoRepo repository.VideoRepository
	storage   storage.Storage
	producer  *event.Producer
	logger    *slog.Logger
}

// NewVideoService creates a new video service.
func NewVideoService(
	videoRepo repository.VideoRepository,
	store storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
) *VideoService {
	return &VideoService{
		videoRepo: videoRepo,
		storage:   store,
		producer:  producer,
		logger:    logger,
	}
}

// PublishVideoInput holds the parameters for publishing a new video.
type PublishVideoInput struct {
	Title           string
	Description     string
	DurationSeconds float64
	VideoFile       *FileUpload
	Thumbnail       *FileUpload
}

// UpdateVideoInput holds the parameters for updating a video's metadata.
type UpdateVideoInput struct {
	Title       *string
	Description *string
	Thumbnail   *FileUpload
}

// ListVideosInput narrows and orders a video listing.
type ListVideosInput struct {
	OwnerID   *uuid.UUID
	Query     string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// Publish uploads the video file and thumbnail to the media host and creates
// the video record.
func (s *VideoService) Publish(ctx context.Context, ownerID uuid.UUID, input PublishVideoInput) (*domain.Video, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Description == "" {
		return nil, apperrors.InvalidInput("description is required")
	}
	if input.VideoFile == nil {
		return nil, apperrors.InvalidInput("video file is required")
	}
	if input.Thumbnail == nil {
		return nil, apperrors.InvalidInput("thumbnail file is required")
	}

	videoRes, err := s.uploadVideoFile(ctx, input.VideoFile)
	if err != nil {
		return nil, err
	}

	thumbRes, err := s.uploadThumbnail(ctx, input.Thumbnail)
	if err != nil {
		s.cleanup(ctx, videoRes.Key)
		return nil, err
	}

	now := time.Now().UTC()
	video := &domain.Video{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		VideoURL:        videoRes.URL,
		ThumbnailURL:    thumbRes.URL,
		Title:           input.Title,
		Description:     input.Description,
		DurationSeconds: input.DurationSeconds,
		Views:           0,
		IsPublished:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.videoRepo.Create(ctx, video); err != nil {
		s.cleanup(ctx, videoRes.Key)
		s.cleanup(ctx, thumbRes.Key)
		return nil, fmt.Errorf("create video: %w", err)
	}

	if err := s.producer.PublishVideoPublished(ctx, video); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish video.published event",
			slog.String("video_id", video.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "video published",
		slog.String("video_id", video.ID.String()),
		slog.String("owner_id", ownerID.String()),
	)

	return video, nil
}

// Get retrieves a video by its ID and increments its view counter.
func (s *VideoService) Get(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}

	if err := s.videoRepo.IncrementViews(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to increment views",
			slog.String("video_id", id.String()),
			slog.String("error", err.Error()),
		)
	} else {
		video.Views++
	}

	return video, nil
}

// List returns published videos matching the given filters along with the
// total match count.
func (s *VideoService) List(ctx context.Context, input ListVideosInput) ([]domain.Video, int, error) {
	videos, total, err := s.videoRepo.List(ctx, repository.ListVideosParams{
		OwnerID:   input.OwnerID,
		Query:     input.Query,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list videos: %w", err)
	}

	return videos, total, nil
}

// Update modifies a video's title, description, and/or thumbnail. Only the
// owner may update a video.
func (s *VideoService) Update(ctx context.Context, ownerID, videoID uuid.UUID, input UpdateVideoInput) (*domain.Video, error) {
	if input.Title == nil && input.Description == nil && input.Thumbnail == nil {
		return nil, apperrors.InvalidInput("at least one of title, description, or thumbnail is required")
	}

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("get video for update: %w", err)
	}

	if video.OwnerID != ownerID {
		return nil, apperrors.Forbidden("only the owner can update this video")
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title must not be empty")
		}
		video.Title = *input.Title
	}

	if input.Description != nil {
		if *input.Description == "" {
			return nil, apperrors.InvalidInput("description must not be empty")
		}
		video.Description = *input.Description
	}

	oldThumbKey := ""
	if input.Thumbnail != nil {
		thumbRes, err := s.uploadThumbnail(ctx, input.Thumbnail)
		if err != nil {
			return nil, err
		}
		oldThumbKey = storageKeyFromURL(video.ThumbnailURL)
		video.ThumbnailURL = thumbRes.URL
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, fmt.Errorf("update video: %w", err)
	}

	if oldThumbKey != "" {
		s.cleanup(ctx, oldThumbKey)
	}

	s.logger.InfoContext(ctx, "video updated",
		slog.String("video_id", video.ID.String()),
	)

	return video, nil
}

// Delete removes a video record and its stored files. Only the owner may
// delete a video.
func (s *VideoService) Delete(ctx context.Context, ownerID, videoID uuid.UUID) error {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return fmt.Errorf("get video for delete: %w", err)
	}

	if video.OwnerID != ownerID {
		return apperrors.Forbidden("only the owner can delete this video")
	}

	if err := s.videoRepo.Delete(ctx, videoID); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if key := storageKeyFromURL(video.VideoURL); key != "" {
		s.cleanup(ctx, key)
	}
	if key := storageKeyFromURL(video.ThumbnailURL); key != "" {
		s.cleanup(ctx, key)
	}

	if err := s.producer.PublishVideoDeleted(ctx, video); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish video.deleted event",
			slog.String("video_id", video.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "video deleted",
		slog.String("video_id", videoID.String()),
		slog.String("owner_id", ownerID.String()),
	)

	return nil
}

func (s *VideoService) uploadVideoFile(ctx context.Context, file *FileUpload) (*storage.UploadResult, error) {
	if !domain.IsAllowedVideoContentType(file.ContentType) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported video type %q", file.ContentType))
	}
	if file.Size <= 0 || file.Size > domain.MaxVideoFileSize {
		return nil, apperrors.InvalidInput("video file size is out of range")
	}

	key := path.Join("videos", uuid.NewString()+extForContentType(file.ContentType))

	res, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: file.ContentType,
		Size:        file.Size,
		Data:        file.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	return res, nil
}

func (s *VideoService) uploadThumbnail(ctx context.Context, file *FileUpload) (*storage.UploadResult, error) {
	if !domain.IsAllowedImageContentType(file.ContentType) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported thumbnail type %q", file.ContentType))
	}
	if file.Size <= 0 || file.Size > domain.MaxImageFileSize {
		return nil, apperrors.InvalidInput("thumbnail file size is out of range")
	}

	key := path.Join("thumbnails", uuid.NewString()+extForContentType(file.ContentType))

	res, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: file.ContentType,
		Size:        file.Size,
		Data:        file.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("upload thumbnail: %w", err)
	}

	return res, nil
}

func (s *VideoService) cleanup(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete stored file",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
