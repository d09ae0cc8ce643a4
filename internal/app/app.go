package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradesapi/config"
	"github.com/guttosm/tradesapi/internal/api"
	"github.com/guttosm/tradesapi/internal/logger"
	"github.com/guttosm/tradesapi/internal/service"
	"github.com/guttosm/tradesapi/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Opens the storage backend selected by STORAGE_DRIVER.
//   - Initializes the trade service on top of the record store.
//   - Creates the HTTP handler layer and configures the Gin router.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close backend connections.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	store, cleanup, err := OpenStore(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}

	// Initialize service layer (record store policy + locking)
	svc := service.NewTradeService(store)

	// Initialize HTTP handler layer and router
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	// Register health and readiness probes
	api.NewHealthHandler(svc.Ping, store.Backend()).Register(router)

	return router, cleanup, nil
}

// OpenStore connects the backend named by cfg.Storage.Driver and wraps it in a
// record store. The returned cleanup releases the backend's connections and is
// never nil when err is nil.
func OpenStore(ctx context.Context, cfg config.Config) (*storage.Store, func(), error) {
	backend, cleanup, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.L().Info().Str("backend", backend.Name()).Msg("storage ready")
	return storage.NewStore(backend), cleanup, nil
}

func openBackend(ctx context.Context, cfg config.Config) (storage.Backend, func(), error) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.DriverFile, "":
		return storage.NewFileBackend(cfg.Storage.File), noop, nil

	case config.DriverMemory:
		return storage.NewMemoryBackend(), noop, nil

	case config.DriverPostgres:
		// indirection for unit testing
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		return storage.NewPostgresBackend(db), func() { _ = db.Close() }, nil

	case config.DriverRedis:
		client, err := redisOpener(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		return storage.NewRedisBackend(client, cfg.Redis.Key), func() { _ = client.Close() }, nil

	case config.DriverS3:
		client, err := s3Opener(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize s3: %w", err)
		}
		return storage.NewS3Backend(client, cfg.S3.Bucket, cfg.S3.Key), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
