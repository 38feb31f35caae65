package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cookingbylea/recipes/backend/config"
	"github.com/cookingbylea/recipes/backend/internal/database"
	"github.com/cookingbylea/recipes/backend/internal/logging"
	"github.com/cookingbylea/recipes/backend/internal/media"
	"github.com/cookingbylea/recipes/backend/internal/middleware"
	"github.com/cookingbylea/recipes/backend/internal/router"
	"github.com/cookingbylea/recipes/backend/internal/server"
	"github.com/cookingbylea/recipes/backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("api: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, shutdownLogs, err := logging.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownLogs(flushCtx)
	}()

	if config.IsProduction() && os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting recipes api",
		slog.String("environment", string(config.GetEnvironment())),
		slog.String("addr", cfg.Addr()))

	db, err := database.New(cfg, logging.Component(logger, "database"))
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg.MigrationsDir, logging.Component(logger, "migrate")); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store, err := media.Open(ctx, cfg, logging.Component(logger, "media"))
	if err != nil {
		return err
	}

	mediaLog := logging.Component(logger, "janitor")
	var janitor media.Janitor = media.NewInlineJanitor(store, mediaLog)
	if cfg.RabbitMQURL != "" {
		conn, ch, err := media.DialQueue(cfg.RabbitMQURL, cfg.MediaCleanupQueue)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, cleaning up images inline", slog.String("error", err.Error()))
		} else {
			defer conn.Close()
			defer ch.Close()
			janitor = media.NewQueueJanitor(ch, cfg.MediaCleanupQueue, janitor, mediaLog)
		}
	}

	var (
		cache        service.RecipeCache
		limiter      *middleware.RateLimiter
		loginLimiter *middleware.RateLimiter
	)
	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(cfg, logging.Component(logger, "redis"))
		if err != nil {
			logger.Warn("Redis unavailable, running without cache and rate limits", slog.String("error", err.Error()))
		} else {
			defer redisClient.Close()
			cache = service.NewRedisRecipeCache(redisClient, cfg.CacheTTL, logging.Component(logger, "cache"))
			limiter, loginLimiter = newLimiters(cfg, redisClient, logger)
		}
	}

	deps := router.Deps{
		Recipes:        service.NewRecipeService(db, store, janitor, cache, cfg.MediaFolder, logging.Component(logger, "recipes")),
		Limiter:        limiter,
		LoginLimiter:   loginLimiter,
		Ping:           func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logging.Component(logger, "http"),
	}
	if cfg.AdminEnabled() {
		deps.Auth = service.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.TokenTTL)
	} else {
		logger.Warn("No admin password configured; recipe mutations are unauthenticated")
	}

	if err := server.New(cfg, deps).Run(ctx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func newLimiters(cfg *config.Config, client *redis.Client, logger *slog.Logger) (mutations, logins *middleware.RateLimiter) {
	log := logging.Component(logger, "ratelimit")
	if cfg.MutationLimit > 0 {
		mutations = middleware.NewMutationRateLimiter(client, cfg.MutationLimit, cfg.MutationWindow, log)
	}
	if cfg.LoginLimit > 0 {
		logins = middleware.NewLoginRateLimiter(client, cfg.LoginLimit, cfg.LoginWindow, log)
	}
	return mutations, logins
}
