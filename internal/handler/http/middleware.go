package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aviral-m/Backend-Project/internal/auth"
	"github.com/aviral-m/Backend-Project/internal/domain"
	"github.com/aviral-m/Backend-Project/internal/repository"
	apperrors "github.com/aviral-m/Backend-Project/pkg/errors"
	"github.com/aviral-m/Backend-Project/pkg/httputil"
	"github.com/aviral-m/Backend-Project/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "authenticated_user"

// Authenticate guards routes behind a valid access token. The token is read
// from the accessToken cookie or an Authorization Bearer header; the claims
// are then resolved against the database so revoked or deleted accounts are
// rejected even with a well-signed token.
func Authenticate(jwtManager *auth.JWTManager, userRepo repository.UserRepository, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractAccessToken(r)
			if token == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("access token is required"), log)
				return
			}

			claims, err := jwtManager.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					httputil.WriteError(w, r, apperrors.Unauthorized("access token has expired"), log)
					return
				}
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid access token"), log)
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid access token"), log)
				return
			}

			user, err := userRepo.GetByID(r.Context(), userID)
			if err != nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid access token"), log)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = logger.WithUserID(ctx, user.ID.String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFromContext returns the authenticated user stored by Authenticate.
func userFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// extractAccessToken pulls the access token from the cookie or the
// Authorization header.
func extractAccessToken(r *http.Request) string {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}
