package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aviral-m/Backend-Project/internal/domain"
	"github.com/aviral-m/Backend-Project/internal/service"
	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
	"github.com/aviral-m/Backend-Project/pkg/httputil"
	"github.com/aviral-m/Backend-Project/pkg/validator"
)

// UserHandler handles HTTP requests for profile endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// ChangePasswordRequest is the JSON request body for a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// UpdateAccountRequest is the JSON request body for an account details
// update. Both fields are optional but at least one must be present.
type UpdateAccountRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// --- Handlers ---

// Current handles GET /api/v1/users/current. It returns the authenticated
// user's profile.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("access token is required"), h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, user, "current user fetched successfully")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("access token is required"), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, nil, "password changed successfully")
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("access token is required"), h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	updated, err := h.service.UpdateAccount(r.Context(), user.ID, service.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, updated, "account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar. The body is multipart
// with a single avatar file.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatar updated successfully", h.service.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image. The body is
// multipart with a single coverImage file.
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "cover image updated successfully", h.service.UpdateCoverImage)
}

func (h *UserHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field, message string,
	update func(ctx context.Context, userID uuid.UUID, file *service.FileUpload) (*domain.User, error),
) {
	user, ok := userFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("access token is required"), h.logger)
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid multipart form: "+err.Error()), h.logger)
		return
	}

	file, err := fileFromForm(r, field)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid file upload: "+err.Error()), h.logger)
		return
	}
	if file == nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(field+" file is required"), h.logger)
		return
	}

	updated, err := update(r.Context(), user.ID, file)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, updated, message)
}
