package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aviral-m/Backend-Project/internal/auth"
	"github.com/aviral-m/Backend-Project/internal/repository"
	"github.com/aviral-m/Backend-Project/internal/service"
	"github.com/aviral-m/Backend-Project/pkg/health"
	"github.com/aviral-m/Backend-Project/pkg/middleware"
)

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	userService *service.UserService,
	videoService *service.VideoService,
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("videohost"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("videohost"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	requireAuth := Authenticate(jwtManager, userRepo, logger)

	authHandler := NewAuthHandler(userService, jwtManager, logger)
	userHandler := NewUserHandler(userService, logger)
	videoHandler := NewVideoHandler(videoService, logger)

	r.Route("/api/v1/users", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh-token", authHandler.RefreshToken)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/logout", authHandler.Logout)
			r.Get("/current", userHandler.Current)
			r.Post("/change-password", userHandler.ChangePassword)
			r.Patch("/update-account", userHandler.UpdateAccount)
			r.Patch("/avatar", userHandler.UpdateAvatar)
			r.Patch("/cover-image", userHandler.UpdateCoverImage)
		})
	})

	r.Route("/api/v1/videos", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", videoHandler.List)
		r.Post("/", videoHandler.Publish)
		r.Get("/{id}", videoHandler.Get)
		r.Patch("/{id}", videoHandler.Update)
		r.Delete("/{id}", videoHandler.Delete)
	})

	return r
}
