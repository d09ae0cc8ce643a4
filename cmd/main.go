package main

//
//  @title           Trades API
//  @version         1.0
//  @description     CRUD service over a collection of buy/sell trade records.
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/tradesapi
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:3000
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        trades
//  @tag.description Create, read, update and delete trades
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/tradesapi/config"
	_ "github.com/guttosm/tradesapi/docs" // swagger docs
	"github.com/guttosm/tradesapi/internal/app"
	"github.com/guttosm/tradesapi/internal/ingestion"
	"github.com/guttosm/tradesapi/internal/logger"
	"github.com/guttosm/tradesapi/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Error().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runImport loads every *.csv file of dir into the configured storage.
func runImport(ctx context.Context, cfg config.Config, dir string, parallel int) (int, error) {
	store, cleanup, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer cleanup()
	return ingestion.ProcessDirectory(ctx, dir, service.NewTradeService(store), parallel)
}

// main is the entry point of the trades service.
//
// Modes (selected via --mode flag):
//   - api:     Starts the REST API over the configured storage backend.
//   - import:  Appends the trades of every *.csv file in --dir.
//   - migrate: Creates or upgrades the trades table (postgres driver).
//
// Flags:
//   - --mode:     Execution mode ("api", "import" or "migrate"). Default: "api".
//   - --dir:      Directory containing .csv input files. Default: "./data/input".
//   - --parallel: Files parsed concurrently in import mode (0=auto).
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT / PORT).
func main() {
	ctx := context.Background()

	// Initialize JSON logger
	logger.Init()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api, import or migrate")
	dir := flag.String("dir", "./data/input", "Directory with .csv files")
	parallel := flag.Int("parallel", 0, "How many files to parse concurrently (0=auto up to CPU, max 8)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "api":
		logger.L().Info().Str("storage", config.AppConfig.Storage.Driver).Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "import":
		logger.L().Info().Str("dir", *dir).Msg("running import")
		n, err := runImport(ctx, config.AppConfig, *dir, *parallel)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("import failed")
		}
		logger.L().Info().Int("trades", n).Msg("import completed successfully")

	case "migrate":
		if config.AppConfig.Storage.Driver != config.DriverPostgres {
			logger.L().Fatal().Str("storage", config.AppConfig.Storage.Driver).Msg("migrate needs STORAGE_DRIVER=postgres")
		}
		if err := app.RunMigrations(config.AppConfig); err != nil {
			logger.L().Fatal().Err(err).Msg("migration failed")
		}
		logger.L().Info().Msg("migrations applied")

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
