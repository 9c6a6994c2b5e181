package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/adapters/storage"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/core/services"
	"github.com/SscSPs/budget_approval_app/internal/handlers"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
	"github.com/SscSPs/budget_approval_app/internal/platform/config"
	"github.com/SscSPs/budget_approval_app/internal/repositories/cache"
	"github.com/SscSPs/budget_approval_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/budget_approval_app/internal/utils"
	"github.com/SscSPs/budget_approval_app/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title Budget Approval API
// @version 1.0
// @description Multi-level budget drafting, approval and limit distribution.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		logger.Error("Database migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("Redis unreachable, unit cache disabled", slog.String("error", err.Error()))
		} else {
			repos.UnitRepo = cache.NewCachedUnitRepository(repos.UnitRepo, redisClient, cfg.UnitCacheTTL, cache.WithCacheLogger(logger))
			logger.Info("Unit tree cache enabled", slog.String("addr", cfg.RedisAddr))
		}
		cancel()
	}

	var archive portssvc.ExportArchive
	if cfg.S3Bucket != "" {
		s3Archive, err := storage.NewS3Archive(ctx, storage.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		}, logger)
		if err != nil {
			logger.Error("Failed to configure export archive", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			logger.Warn("Export bucket not ready, archiving disabled", slog.String("error", err.Error()))
		} else {
			archive = s3Archive
		}
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, archive)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	analytics := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer analytics.Close()

	handlers.RegisterRoutes(r, cfg, serviceContainer, analytics)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
