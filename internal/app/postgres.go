package app

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
	goose "github.com/pressly/goose/v3"

	"github.com/guttosm/tradesapi/config"
	"github.com/guttosm/tradesapi/db/migrations"
)

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// InitPostgres initializes a PostgreSQL connection using the provided configuration.
//
// Behavior:
//   - Opens a database handle with the DSN built from cfg.Postgres.
//   - Immediately pings the database to validate connectivity.
//
// Returns:
//   - *sql.DB: an open database connection pool (safe for concurrent use).
//   - error: if opening or pinging the database fails.
//
// Example usage:
//
//	db, err := app.InitPostgres(config.AppConfig)
//	if err != nil {
//	    logger.L().Fatal().Err(err).Msg("db connect error")
//	}
//	defer db.Close()
func InitPostgres(cfg config.Config) (*sql.DB, error) {
	// Initialize database handle (does not establish a real connection yet)
	db, err := sqlOpener("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	// Verify connectivity by pinging the database
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// postgresOpener is an indirection used by InitializeApp; overridden in tests to avoid real connections.
var postgresOpener = InitPostgres

// Migrate applies the embedded goose migrations that create the trades table.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// RunMigrations connects with cfg and brings the schema up to date.
func RunMigrations(cfg config.Config) error {
	db, err := postgresOpener(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize postgres: %w", err)
	}
	defer func() { _ = db.Close() }()
	return Migrate(db)
}
