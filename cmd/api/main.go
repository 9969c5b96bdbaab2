package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipewizard/backend/config"
	"github.com/pageza/recipewizard/backend/internal/api"
	"github.com/pageza/recipewizard/backend/internal/database"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/middleware"
	"github.com/pageza/recipewizard/backend/internal/router"
	"github.com/pageza/recipewizard/backend/internal/server"
	"github.com/pageza/recipewizard/backend/internal/service"
	"github.com/pageza/recipewizard/backend/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server exited with error", "error", err)
	}
	log.Info("Server stopped")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg, log)
	if err != nil {
		return err
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Failed to close database", "error", err)
		}
	}()

	if err := database.RunMigrations(db, database.Migrations(), log); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg, log)
		if err != nil {
			// Redis only backs revocation, job status caching and rate limiting.
			log.Warn("Redis unavailable, continuing without it", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var (
		revoked  service.RevocationStore = service.NewMemoryRevocationStore()
		jobCache service.JobCache
	)
	if redisClient != nil {
		revoked = service.NewRedisRevocationStore(redisClient)
		jobCache = service.NewRedisJobCache(redisClient, log)
	}

	var images service.ImageStore
	if cfg.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return err
		}
		images = s3cfg
	}

	provider, err := service.NewLLMProvider(ctx, cfg)
	if err != nil {
		return err
	}
	rules, err := service.LoadCategoryRules()
	if err != nil {
		return err
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiry, revoked, log)
	userService := service.NewUserService(db, log)
	recipeService := service.NewRecipeService(db, images, log)
	generator := service.NewRecipeGenerator(provider, rules, log)
	jobService := service.NewJobService(db, generator, recipeService, userService, jobCache, log)
	shoppingListService := service.NewShoppingListService(db, log)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		limiter = middleware.NewRecipeGenerationRateLimiter(redisClient, cfg.RateLimitTimes, cfg.RateLimitWindow, log)
	}

	handler := router.SetupRouter(cfg, log, router.Handlers{
		Auth:         api.NewAuthHandler(authService, log),
		Users:        api.NewUserHandler(userService, log),
		Recipes:      api.NewRecipeHandler(recipeService, generator, userService, log),
		Jobs:         api.NewJobHandler(jobService, recipeService, log),
		ShoppingList: api.NewShoppingListHandler(shoppingListService, log),
		Health:       api.NewHealthHandler(db, redisClient, cfg.Version, string(cfg.Environment), log),
	}, authService, limiter)

	srv := server.New(cfg, handler, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			srv.Shutdown(shutdownCtx),
			jobService.Shutdown(shutdownCtx),
			shutdownTracing(shutdownCtx),
		)
	})

	log.Info("Recipe API started",
		"addr", cfg.Addr(),
		"environment", cfg.Environment,
		"version", cfg.Version)
	return g.Wait()
}
