package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/artfolio/auth-service/config"
	"github.com/artfolio/auth-service/db"
	"github.com/artfolio/auth-service/internal/auth/domain"
	"github.com/artfolio/auth-service/internal/auth/handler"
	memoryrepo "github.com/artfolio/auth-service/internal/auth/repository/memory"
	mongorepo "github.com/artfolio/auth-service/internal/auth/repository/mongo"
	pgrepo "github.com/artfolio/auth-service/internal/auth/repository/postgres"
	"github.com/artfolio/auth-service/internal/auth/service"
	"github.com/gofiber/fiber/v2"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userRepo, cleanup, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer cleanup()

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessExpiryMin, cfg.RefreshExpiryMin)
	userService := service.NewUserService(userRepo, tokenService, cfg)

	// Admin bootstrap is non-fatal: a store hiccup here is retried on
	// the next restart, not in-process.
	if err := service.NewBootstrap(userRepo, cfg, logger).Run(ctx); err != nil {
		logger.Warn("admin bootstrap failed", "error", err)
	}

	authHandler := handler.NewAuthHandler(userService)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler, cfg.EnableRegistration)

	logger.Info("starting server", "port", cfg.Port, "store", cfg.StoreDriver, "env", cfg.Env)
	return app.Listen(":" + cfg.Port)
}

func newRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
			return nil, nil, err
		}
		pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, err
		}
		return pgrepo.NewPostgresRepository(pool, cfg.StoreTimeout), pool.Close, nil

	case config.DriverMongo:
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		repo, err := mongorepo.NewMongoRepository(client.Database(cfg.MongoDBName), cfg.StoreTimeout)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return repo, func() { _ = client.Disconnect(ctx) }, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, data will not survive a restart")
		return memoryrepo.NewMemoryRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
