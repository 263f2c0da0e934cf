package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aviral-m/Backend-Project/internal/auth"
	"github.com/aviral-m/Backend-Project/internal/service"
	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
	"github.com/aviral-m/Backend-Project/pkg/httputil"
	"github.com/aviral-m/Backend-Project/pkg/validator"
)

// AuthHandler handles HTTP requests for registration and session endpoints.
type AuthHandler struct {
	service    *service.UserService
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.UserService, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, jwtManager: jwtManager, logger: logger}
}

// --- Request DTOs ---

// LoginRequest is the JSON request body for user login. Either username or
// email identifies the account.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the JSON request body for token refresh when the
// cookie is absent.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// --- Response types ---

// LoginResponse wraps user data with the issued tokens.
type LoginResponse struct {
	User   any `json:"user"`
	Tokens any `json:"tokens"`
}

// --- Handlers ---

// Register handles POST /api/v1/users/register. The body is multipart: text
// fields plus a required avatar file and an optional cover image.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid multipart form: "+err.Error()), h.logger)
		return
	}

	avatar, err := fileFromForm(r, "avatar")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid avatar upload: "+err.Error()), h.logger)
		return
	}
	coverImage, err := fileFromForm(r, "coverImage")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid cover image upload: "+err.Error()), h.logger)
		return
	}

	input := service.RegisterInput{
		Username:   r.FormValue("username"),
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		FullName:   r.FormValue("fullName"),
		Avatar:     avatar,
		CoverImage: coverImage,
	}

	user, err := h.service.Register(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /api/v1/users/login. On success the token pair is set as
// cookies and also returned in the body for non-browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("username or email is required"), h.logger)
		return
	}

	user, tokens, err := h.service.Login(r.Context(), service.LoginInput{
		Identifier: identifier,
		Password:   req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	setAuthCookies(w, tokens, h.jwtManager.AccessExpiry(), h.jwtManager.RefreshExpiry())
	httputil.WriteSuccess(w, http.StatusOK, LoginResponse{User: user, Tokens: tokens}, "user logged in successfully")
}

// Logout handles POST /api/v1/users/logout. It invalidates the stored refresh
// session and expires both cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("access token is required"), h.logger)
		return
	}

	if err := h.service.Logout(r.Context(), user.ID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	clearAuthCookies(w)
	httputil.WriteSuccess(w, http.StatusOK, nil, "user logged out successfully")
}

// RefreshToken handles POST /api/v1/users/refresh-token. The refresh token
// comes from the refreshToken cookie or the JSON body; a fresh pair replaces
// the cookies on success.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	token := ""
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var req RefreshTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}

	tokens, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	setAuthCookies(w, tokens, h.jwtManager.AccessExpiry(), h.jwtManager.RefreshExpiry())
	httputil.WriteSuccess(w, http.StatusOK, tokens, "access token refreshed successfully")
}
