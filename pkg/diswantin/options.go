package diswantin

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Option is a function that configures an App instance
type Option func(*Config) error

// Config holds all configuration for an App instance
type Config struct {
	// Database
	Pool          *pgxpool.Pool
	DBMode        DBMode
	DatabaseURL   string
	AutoMigration bool
	MigrationsDir string

	// HTTP
	RoutePrefix string

	// Sessions
	SessionTTL time.Duration

	// Logging
	Logger *zap.Logger
}

// DBMode represents the database connection mode
type DBMode int

const (
	// DBModeShared means the app uses an existing connection pool provided by the host
	DBModeShared DBMode = iota

	// DBModeSeparate means the app creates and manages its own connection pool
	DBModeSeparate
)

// WithSharedPool configures the app to use an existing pgx connection pool.
// The pool will not be closed by Shutdown().
func WithSharedPool(pool *pgxpool.Pool) Option {
	return func(c *Config) error {
		if pool == nil {
			return fmt.Errorf("connection pool cannot be nil")
		}
		c.Pool = pool
		c.DBMode = DBModeShared
		return nil
	}
}

// WithDatabaseURL configures the app to create its own connection pool.
// The pool will be closed by Shutdown().
func WithDatabaseURL(url string) Option {
	return func(c *Config) error {
		if url == "" {
			return fmt.Errorf("database URL cannot be empty")
		}
		c.DatabaseURL = url
		c.DBMode = DBModeSeparate
		return nil
	}
}

// WithRoutePrefix sets the HTTP route prefix for the app's endpoints
// Defaults to "/api/v1"
func WithRoutePrefix(prefix string) Option {
	return func(c *Config) error {
		if prefix == "" {
			return fmt.Errorf("route prefix cannot be empty")
		}
		c.RoutePrefix = prefix
		return nil
	}
}

// WithSessionTTL sets how long login sessions stay valid
// Defaults to 30 days
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Config) error {
		if ttl <= 0 {
			return fmt.Errorf("session TTL must be positive")
		}
		c.SessionTTL = ttl
		return nil
	}
}

// WithLogger sets a custom logger for the app
// Defaults to the global zap logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithAutoMigration enables or disables automatic database migration on initialization
// Defaults to true
func WithAutoMigration(enabled bool) Option {
	return func(c *Config) error {
		c.AutoMigration = enabled
		return nil
	}
}

// WithMigrationsDir sets the directory containing SQL migration files
// Defaults to "migrations"
func WithMigrationsDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return fmt.Errorf("migrations directory cannot be empty")
		}
		c.MigrationsDir = dir
		return nil
	}
}
