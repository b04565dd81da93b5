package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"microblog/internal/metrics"
	"microblog/internal/repositories"
	"microblog/internal/router"
	"microblog/internal/seeder"
	"microblog/pkg/config"
	"microblog/pkg/logging"
	"microblog/validators"
)

func main() {
	cfg := config.Load()
	logger := logging.Init(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	users, tweets, err := buildRepositories(cfg, db)
	if err != nil {
		logger.Error("failed to build repositories", "error", err)
		os.Exit(1)
	}

	// Bootstrap must complete in full before the server accepts traffic;
	// a partial seed is fatal.
	seed := seeder.New(users, tweets, seeder.Config{
		NumberOfUsers: cfg.SeedUsers,
		TweetsPerUser: cfg.SeedTweetsPerUser,
	}, logger)
	if err := seed.Run(context.Background()); err != nil {
		logger.Error("bootstrap seeding failed", "error", err)
		os.Exit(1)
	}

	go serveMetrics(cfg, logger)

	e := echo.New()
	e.HideBanner = true
	router.SetupMiddleware(e)
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, users, tweets, logger)

	logger.Info("starting server", "port", cfg.Port, "env", cfg.Env, "storeDriver", cfg.StoreDriver)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func buildRepositories(cfg *config.Config, db *config.DB) (repositories.UserRepository, repositories.TweetRepository, error) {
	opts := repositories.Options{
		Timeout:        cfg.StoreTimeout,
		RetryAttempts:  cfg.StoreRetryAttempts,
		RetryBaseDelay: cfg.StoreRetryBaseDelay,
	}
	switch cfg.StoreDriver {
	case "mongo":
		database := db.Mongo.Database(cfg.MongoDatabase)
		return repositories.NewMongoUserRepository(database, opts),
			repositories.NewMongoTweetRepository(database, opts), nil
	case "postgres":
		if err := repositories.AutoMigrate(db.Postgres); err != nil {
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		return repositories.NewGormUserRepository(db.Postgres, opts),
			repositories.NewGormTweetRepository(db.Postgres, opts), nil
	case "memory":
		return repositories.NewMemoryUserRepository(), repositories.NewMemoryTweetRepository(), nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func serveMetrics(cfg *config.Config, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
		logger.Error("metrics listener stopped", "error", err)
	}
}
