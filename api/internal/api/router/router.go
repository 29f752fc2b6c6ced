// api/internal/api/router/router.go
package router

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/irgordon/keyward/api/internal/api/handlers"
	auth_middleware "github.com/irgordon/keyward/api/internal/api/middleware"
	"github.com/irgordon/keyward/api/internal/core/domain"
)

// RouterConfig defines the strict dependencies required to build the API routing tree.
type RouterConfig struct {
	AllowedOrigins       []string
	MaxBodyBytes         int64
	AuthHandler          *handlers.AuthHandler
	APIConfigHandler     *handlers.APIConfigHandler
	HealthHandler        *handlers.HealthHandler
	SecurityEventHandler *handlers.SecurityEventHandler
	AuthMiddleware       *auth_middleware.AuthMiddleware
	LoginLimiter         *auth_middleware.RateLimiter
	Logger               *slog.Logger
}

// NewRouter constructs the Chi multiplexer, attaches global middleware, and wires all endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// =========================================================================
	// 1. Global Gateway Middleware Pipeline
	// =========================================================================

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(auth_middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// 🛡️ OOM Protection
	if cfg.MaxBodyBytes > 0 {
		r.Use(auth_middleware.MaxBytes(cfg.MaxBodyBytes))
	}

	// Strict CORS Configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// =========================================================================
	// 2. API Routing Tree
	// =========================================================================

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", cfg.HealthHandler.Check)

		r.Route("/auth", func(r chi.Router) {
			// -----------------------------------------------------------------
			// Public Routes (credential-accepting, rate limited)
			// -----------------------------------------------------------------
			r.Group(func(r chi.Router) {
				if cfg.LoginLimiter != nil {
					r.Use(cfg.LoginLimiter.Middleware)
				}
				r.Post("/register", cfg.AuthHandler.Register)
				r.Post("/login", cfg.AuthHandler.Login)
			})

			// -----------------------------------------------------------------
			// Protected Routes (Requires a Valid Session Token)
			// -----------------------------------------------------------------
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthMiddleware.RequireAuthentication)

				r.Get("/me", cfg.AuthHandler.Me)
				r.Get("/profile", cfg.AuthHandler.Me)
				r.Put("/profile", cfg.AuthHandler.UpdateProfile)
				r.Put("/password", cfg.AuthHandler.ChangePassword)
				r.Post("/logout", cfg.AuthHandler.Logout)

				r.Get("/api-config", cfg.APIConfigHandler.Get)
				r.Put("/api-config", cfg.APIConfigHandler.Update)
				r.Post("/test-api", cfg.APIConfigHandler.TestAPI)
			})
		})

		// ---------------------------------------------------------------------
		// Admin Routes (Authenticated + Role Gate)
		// ---------------------------------------------------------------------
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.AuthMiddleware.RequireAuthentication)
			r.Use(cfg.AuthMiddleware.RequireRole(domain.RoleAdmin))

			r.Get("/security-events", cfg.SecurityEventHandler.List)
		})
	})

	return r
}
