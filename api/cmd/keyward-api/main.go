package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/irgordon/keyward/api/internal/api/handlers"
	"github.com/irgordon/keyward/api/internal/api/middleware"
	"github.com/irgordon/keyward/api/internal/api/router"
	"github.com/irgordon/keyward/api/internal/config"
	"github.com/irgordon/keyward/api/internal/core/services"
	"github.com/irgordon/keyward/api/internal/db/postgres"
	"github.com/irgordon/keyward/api/internal/infrastructure/crypto"
	"github.com/irgordon/keyward/api/internal/workers"
)

func main() {
	// --- 1. Configuration & Logging ---
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("🚀 Booting keyward API...", "env", cfg.Environment)

	if err := cfg.Validate(); err != nil {
		logger.Error("FATAL: insecure production configuration", "error", err)
		os.Exit(1)
	}

	// --- 2. Secrets ---
	cipher, err := crypto.NewCredentialCipher(cfg.MasterSecret)
	if err != nil {
		logger.Error("FATAL: credential cipher failed", "error", err)
		os.Exit(1)
	}
	if cipher.UsesInsecureDefault() {
		logger.Warn("⚠️ CRYPTO_SECRET_KEY is not set; stored API keys are encrypted with a public default")
	}

	tokens := services.NewTokenService(cfg.SigningSecret)
	if tokens.UsesInsecureDefault() {
		logger.Warn("⚠️ SECRET_KEY is not set; session tokens are signed with a public default")
	}

	// --- 3. Outbound Infrastructure ---
	dbPool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("FATAL: DB failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	sqlxDB := postgres.OpenSQLX(dbPool)
	defer sqlxDB.Close()

	if err := postgres.Migrate(sqlxDB.DB, logger); err != nil {
		logger.Error("FATAL: migrations failed", "error", err)
		os.Exit(1)
	}

	// --- 4. Dependency Injection ---
	userRepo := postgres.NewUserRepo(dbPool)
	eventRepo := postgres.NewSecurityEventRepo(sqlxDB)

	authService := services.NewAuthService(userRepo, tokens, logger)
	credentialService := services.NewCredentialService(userRepo, cipher, logger)

	loginLimiter := middleware.NewRateLimiter(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	go loginLimiter.Cleanup(workerCtx, time.Minute)

	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepo, eventRepo, logger)
	authMiddleware.EventLimiter = middleware.NewRateLimiter(cfg.SecurityEventRatePerSec, cfg.SecurityEventBurst)
	go authMiddleware.EventLimiter.Cleanup(workerCtx, time.Minute)

	// Security event retention
	eventPruner := workers.NewEventPruner(eventRepo, logger, cfg.SecurityEventRetention, time.Hour)
	go eventPruner.Start(workerCtx)

	// --- 5. HTTP Gateway ---
	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins:       cfg.AllowedOrigins,
		MaxBodyBytes:         cfg.MaxBodyBytes,
		AuthHandler:          handlers.NewAuthHandler(authService, logger),
		APIConfigHandler:     handlers.NewAPIConfigHandler(credentialService, logger),
		HealthHandler:        handlers.NewHealthHandler(dbPool, logger),
		SecurityEventHandler: handlers.NewSecurityEventHandler(eventRepo, logger),
		AuthMiddleware:       authMiddleware,
		LoginLimiter:         loginLimiter,
		Logger:               logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      65 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// --- 6. Graceful Exit ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("🌐 keyward API active", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CRITICAL: Server crashed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("🛑 Shutting down...")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ERROR: Forced shutdown", "error", err)
	}
	logger.Info("✅ keyward API stopped")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
