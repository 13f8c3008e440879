package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/auth"
	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/config"
	"github.com/SAP-F-2025/flashcard-service/internal/handlers"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
	"github.com/SAP-F-2025/flashcard-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewSlog(cfg.Environment, os.Stdout)
	slog.SetDefault(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get sql.DB", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := pkg.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	cacheService, redisClient := newCache(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", "error", err)
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:          postgres.NewRepository(db),
		Cache:         cacheService,
		Publisher:     publisher,
		Tokens:        tokens,
		Verifier:      auth.NewVerifier(cfg.Auth, tokens),
		Validator:     validator.New(),
		Logger:        logger,
		VerifyAnswers: cfg.VerifyAnswers,
		CacheTTL:      cfg.CacheTTL,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	httpLogger := utils.NewSlogLogger(logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.RequestID())
	router.Use(utils.LoggerMiddleware(httpLogger))
	router.Use(utils.ContextLogger(httpLogger))

	handlerManager := handlers.NewHandlerManager(serviceManager, httpLogger, cfg.CORSAllowedOrigins,
		func(ctx context.Context) error {
			return sqlDB.PingContext(ctx)
		})
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// newCache connects to redis when REDIS_URL is set. Without it, or when the
// connection fails, caching is disabled.
func newCache(cfg *config.Config, logger *slog.Logger) (cache.CacheService, *redis.Client) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, caching disabled")
		return cache.NewNoopCache(), nil
	}

	client, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, caching disabled", "error", err)
		return cache.NewNoopCache(), nil
	}

	zapLogger, err := newZapLogger(cfg)
	if err != nil {
		logger.Warn("Failed to build zap logger, using no-op", "error", err)
		zapLogger = zap.NewNop()
	}

	return cache.NewRedisCache(client, zapLogger), client
}

func newZapLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
