// main.go - Animax catalog API server
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animax/internal/auth"
	"animax/internal/authz"
	"animax/internal/config"
	"animax/internal/database"
	"animax/internal/handlers"
	"animax/internal/logging"
	"animax/internal/middleware"
	"animax/internal/repositories"
	"animax/internal/services"
	"animax/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	gin.SetMode(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	enforcer, err := authz.NewEnforcer(authz.Config{
		ModelPath:  cfg.Authz.ModelPath,
		PolicyPath: cfg.Authz.PolicyPath,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load authorization policy")
	}

	tokens, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize token manager")
	}

	// Repositories
	catalog := repositories.NewCatalogRepository(db)
	accounts := repositories.NewAccountRepository(db)
	engagement := repositories.NewEngagementRepository(db)

	// Services
	uploads := services.NewUploadService(objectStore)
	cascade := services.NewCascadeManager(catalog, objectStore, enforcer)

	h := handlers.Handlers{
		Anime:      handlers.NewAnimeHandler(services.NewAnimeService(catalog, uploads, enforcer, cascade)),
		Season:     handlers.NewSeasonHandler(services.NewSeasonService(catalog, uploads, enforcer, cascade)),
		Episode:    handlers.NewEpisodeHandler(services.NewEpisodeService(catalog, uploads, enforcer, cascade)),
		User:       handlers.NewUserHandler(services.NewUserService(accounts, engagement, uploads, tokens, enforcer)),
		SuperAdmin: handlers.NewSuperAdminHandler(services.NewSuperAdminService(accounts, uploads, tokens, cfg.AdminSignupEnabled)),
		Engagement: handlers.NewEngagementHandler(
			services.NewWatchlistService(engagement, catalog, enforcer),
			services.NewWatchProgressService(engagement, catalog, enforcer),
			services.NewCommentService(engagement, catalog, enforcer),
		),
		Health: handlers.NewHealthHandler(
			func(ctx context.Context) error { return database.Health(ctx, db) },
			func() sql.DBStats { return database.Stats(db) },
		),
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	defer rateLimiter.Stop()

	router := setupRouter(cfg, rateLimiter)
	handlers.RegisterRoutes(router, h, handlers.Gate{
		Tokens:   tokens,
		Accounts: services.NewIdentityResolver(accounts),
		Authz:    enforcer,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logging.Info().
			Str("port", cfg.Port).
			Str("environment", cfg.Environment).
			Str("bucket", cfg.Storage.BucketName).
			Msg("animax server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func setupRouter(cfg *config.Config, rateLimiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 32 << 20

	router.Use(logging.GinLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())

	// Video bodies are already compressed
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{
		".mp4", ".avi", ".webm", ".png", ".jpg", ".jpeg", ".webp"})))

	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization", "X-Request-ID",
		},
		ExposeHeaders: []string{
			"Content-Length", "X-Request-ID",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.SecurityHeaders())
	router.Use(rateLimiter.Middleware())
	router.Use(middleware.MaxBodySize(cfg.MaxUploadBytes()))

	return router
}
