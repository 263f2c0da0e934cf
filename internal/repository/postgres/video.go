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
	"github.com/aviral-m/Backend-Project/internal/repository"
	"github.com/aviral-m/Backend-Project/pkg/database"
	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
)

// VideoRepository implements repository.VideoRepository using PostgreSQL.
type VideoRepository struct {
	db database.DBTX
}

// NewVideoRepository creates a new PostgreSQL-backed video repository.
func NewVideoRepository(db database.DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `id, owner_id, video_url, thumbnail_url, title, description, duration_seconds, views, is_published, created_at, updated_at`

// sortColumns whitelists the columns a listing may be ordered by. Anything
// else falls back to created_at.
var sortColumns = map[string]string{
	"created_at":       "created_at",
	"views":            "views",
	"duration_seconds": "duration_seconds",
	"title":            "title",
}

// Create inserts a new video into the database.
func (r *VideoRepository) Create(ctx context.Context, v *domain.Video) error {
	query := `
		INSERT INTO videos (id, owner_id, video_url, thumbnail_url, title, description, duration_seconds, views, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		v.ID,
		v.OwnerID,
		v.VideoURL,
		v.ThumbnailURL,
		v.Title,
		v.Description,
		v.DurationSeconds,
		v.Views,
		v.IsPublished,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// GetByID retrieves a video by its ID.
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	var v domain.Video
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.OwnerID,
		&v.VideoURL,
		&v.ThumbnailURL,
		&v.Title,
		&v.Description,
		&v.DurationSeconds,
		&v.Views,
		&v.IsPublished,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan video: %w", err)
	}

	return &v, nil
}

// List returns published videos matching the given parameters together with
// the total match count before pagination.
func (r *VideoRepository) List(ctx context.Context, params repository.ListVideosParams) ([]domain.Video, int, error) {
	conditions := []string{"is_published = true"}
	args := []any{}
	argPos := 1

	if params.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argPos))
		args = append(args, *params.OwnerID)
		argPos++
	}

	if params.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+params.Query+"%")
		argPos++
	}

	sortCol, ok := sortColumns[params.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	sortDir := "DESC"
	if strings.EqualFold(params.SortOrder, repository.SortAsc) {
		sortDir = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM videos
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`,
		videoColumns, strings.Join(conditions, " AND "), sortCol, sortDir, argPos, argPos+1,
	)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []domain.Video
	total := 0
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(
			&v.ID,
			&v.OwnerID,
			&v.VideoURL,
			&v.ThumbnailURL,
			&v.Title,
			&v.Description,
			&v.DurationSeconds,
			&v.Views,
			&v.IsPublished,
			&v.CreatedAt,
			&v.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan video row: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate video rows: %w", err)
	}

	if videos == nil {
		videos = []domain.Video{}
	}

	return videos, total, nil
}

// Update modifies an existing video in the database.
func (r *VideoRepository) Update(ctx context.Context, v *domain.Video) error {
	v.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE videos
		SET video_url = $1, thumbnail_url = $2, title = $3, description = $4,
		    duration_seconds = $5, is_published = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		v.VideoURL,
		v.ThumbnailURL,
		v.Title,
		v.Description,
		v.DurationSeconds,
		v.IsPublished,
		v.UpdatedAt,
		v.ID,
	)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("video", v.ID.String())
	}

	return nil
}

// Delete removes a video from the database by its ID.
func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM videos WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("video", id.String())
	}

	return nil
}

// IncrementViews bumps the view counter for the given video.
func (r *VideoRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE videos SET views = views + 1 WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	return nil
}
