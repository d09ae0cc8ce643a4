package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/guttosm/tradesapi/internal/logger"
)

// Storage drivers understood by STORAGE_DRIVER.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
	DriverMemory   = "memory"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs, one per concern: the HTTP server, the storage
// driver selection, and the connection settings of each supported backend.
//
// Example ENV equivalent:
//
//	SERVER_PORT=3000
//	STORAGE_DRIVER=file
//	TRADES_FILE=trades.json
//	RATE_LIMIT_RPS=10
//	RATE_LIMIT_BURST=60
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Storage  StorageConfig  // Which backend holds the trade collection
	Postgres PostgresConfig // PostgreSQL connection settings
	Redis    RedisConfig    // Redis connection settings
	S3       S3Config       // S3 bucket settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string  // The TCP port the HTTP server will listen on (e.g., "3000")
	RateLimitRPS   float64 // Sustained requests per second allowed per client IP
	RateLimitBurst int     // Burst size per client IP
}

// StorageConfig selects the backend for the trade collection.
type StorageConfig struct {
	Driver string // file | postgres | redis | s3 | memory
	File   string // Path of the JSON file used by the file driver
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// RedisConfig defines where the redis driver keeps the collection document.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// S3Config defines the bucket and object key of the collection document.
// Endpoint is optional and only needed for S3-compatible stores (MinIO, LocalStack).
type S3Config struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// SERVER_PORT also honours the plain PORT variable, which is what most
// hosting platforms inject.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() terminates the app
//     with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 60)

	viper.SetDefault("STORAGE_DRIVER", DriverFile)
	viper.SetDefault("TRADES_FILE", "trades.json")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "trades")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_KEY", "trades")

	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_KEY", "trades.json")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_ENDPOINT", "")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()
	_ = viper.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")

	// Populate global config instance
	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			RateLimitRPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(strings.TrimSpace(viper.GetString("STORAGE_DRIVER"))),
			File:   viper.GetString("TRADES_FILE"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			Key:      viper.GetString("REDIS_KEY"),
		},
		S3: S3Config{
			Bucket:   viper.GetString("S3_BUCKET"),
			Key:      viper.GetString("S3_KEY"),
			Region:   viper.GetString("S3_REGION"),
			Endpoint: viper.GetString("S3_ENDPOINT"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	// Validate critical fields
	validateConfig()
}

// DSN builds the lib/pq connection string for these settings.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// missingFields reports which required variables are absent for cfg.
// Only the settings of the selected storage driver are required.
func missingFields(cfg Config) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}

	switch cfg.Storage.Driver {
	case DriverFile:
		if cfg.Storage.File == "" {
			missing = append(missing, "TRADES_FILE")
		}
	case DriverPostgres:
		if cfg.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if cfg.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if cfg.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if cfg.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if cfg.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	case DriverRedis:
		if cfg.Redis.Addr == "" {
			missing = append(missing, "REDIS_ADDR")
		}
		if cfg.Redis.Key == "" {
			missing = append(missing, "REDIS_KEY")
		}
	case DriverS3:
		if cfg.S3.Bucket == "" {
			missing = append(missing, "S3_BUCKET")
		}
		if cfg.S3.Key == "" {
			missing = append(missing, "S3_KEY")
		}
	case DriverMemory:
	default:
		missing = append(missing, "STORAGE_DRIVER")
	}

	return missing
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
func validateConfig() {
	if missing := missingFields(AppConfig); len(missing) > 0 {
		logger.L().Fatal().Strs("missing", missing).Msg("missing or invalid required environment variables")
	}
}
