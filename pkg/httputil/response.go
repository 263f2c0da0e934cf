package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
	"github.com/aviral-m/Backend-Project/pkg/logger"
	"github.com/aviral-m/Backend-Project/pkg/validator"
)

// Response is the success envelope returned by every endpoint:
// {"status": ..., "data": ..., "message": ...}.
type Response struct {
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope returned by every endpoint:
// {"status": ..., "message": ..., "success": false}.
type ErrorResponse struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Success bool              `json:"success"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes the standard success envelope.
func WriteSuccess(w http.ResponseWriter, status int, data any, message string) {
	WriteJSON(w, status, Response{
		Status:  status,
		Data:    data,
		Message: message,
	})
}

// WriteError writes the standard error envelope based on the error type.
// AppError carries its own status and message; bare sentinel errors map
// through apperrors.HTTPStatus. Internal errors are logged with the
// request-scoped logger (set by the RequestLogger middleware) when available,
// falling back to the given logger, and their detail is never exposed.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status == http.StatusInternalServerError {
			logInternal(r, l, err)
		}
		WriteJSON(w, appErr.Status, ErrorResponse{
			Status:  appErr.Status,
			Message: appErr.Message,
			Success: false,
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		message = "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		message = "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrForbidden):
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		logInternal(r, l, err)
	}

	WriteJSON(w, status, ErrorResponse{
		Status:  status,
		Message: message,
		Success: false,
	})
}

// WriteValidationError writes a 400 envelope with per-field messages when the
// error comes from the validator package.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Status:  http.StatusBadRequest,
			Message: "request validation failed",
			Success: false,
			Fields:  valErr.Fields(),
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Status:  http.StatusBadRequest,
		Message: err.Error(),
		Success: false,
	})
}

// ParseUUID validates that the given string is a valid UUID. On failure it
// writes a 400 envelope and returns uuid.Nil plus false, signaling the caller
// to return early.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Status:  http.StatusBadRequest,
			Message: "invalid id: " + param,
			Success: false,
		})
		return uuid.Nil, false
	}
	return id, true
}

func logInternal(r *http.Request, l *slog.Logger, err error) {
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}
