package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aviral-m/Backend-Project/internal/service"
	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
	"github.com/aviral-m/Backend-Project/pkg/httputil"
	"github.com/aviral-m/Backend-Project/pkg/pagination"
)

// VideoHandler handles HTTP requests for video endpoints.
type VideoHandler struct {
	service *service.VideoService
	logger  *slog.Logger
}

// NewVideoHandler creates a new video HTTP handler.
func NewVideoHandler(svc *service.VideoService, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{service: svc, logger: logger}
}

// Publish handles POST /api/v1/videos. The body is multipart: title,
// description and duration fields plus videoFile and thumbnail files.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("access token is required"), h.logger)
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid multipart form: "+err.Error()), h.logger)
		return
	}

	videoFile, err := fileFromForm(r, "videoFile")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid video upload: "+err.Error()), h.logger)
		return
	}
	thumbnail, err := fileFromForm(r, "thumbnail")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid thumbnail upload: "+err.Error()), h.logger)
		return
	}

	input := service.PublishVideoInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
	}
	if d := r.FormValue("duration"); d != "" {
		seconds, err := strconv.ParseFloat(d, 64)
		if err != nil || seconds < 0 {
			httputil.WriteError(w, r, apperrors.InvalidInput("invalid duration: "+d), h.logger)
			return
		}
		input.DurationSeconds = seconds
	}

	video, err := h.service.Publish(r.Context(), user.ID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, video, "video published successfully")
}

// List handles GET /api/v1/videos. Supported query parameters: page, limit,
// query (text search), sortBy, sortType and userId (owner filter).
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	q := r.URL.Query()

	input := service.ListVideosInput{
		Query:     q.Get("query"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortType"),
		Limit:     params.PerPage,
		Offset:    params.Offset,
	}

	if owner := q.Get("userId"); owner != "" {
		id, ok := httputil.ParseUUID(w, owner)
		if !ok {
			return
		}
		input.OwnerID = &id
	}

	videos, total, err := h.service.List(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result := pagination.NewResult(videos, total, params)
	httputil.WriteSuccess(w, http.StatusOK, result, "videos fetched successfully")
}

// Get handles GET /api/v1/videos/{id}. Fetching a video counts as a view.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	video, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, video, "video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{id}. The body is multipart: optional
// title and description fields plus an optional replacement thumbnail.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("access token is required"), h.logger)
		return
	}

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid multipart form: "+err.Error()), h.logger)
		return
	}

	var input service.UpdateVideoInput
	if r.Form.Has("title") {
		title := r.FormValue("title")
		input.Title = &title
	}
	if r.Form.Has("description") {
		description := r.FormValue("description")
		input.Description = &description
	}

	thumbnail, err := fileFromForm(r, "thumbnail")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid thumbnail upload: "+err.Error()), h.logger)
		return
	}
	input.Thumbnail = thumbnail

	video, err := h.service.Update(r.Context(), user.ID, id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, video, "video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{id}.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("access token is required"), h.logger)
		return
	}

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, nil, "video deleted successfully")
}
