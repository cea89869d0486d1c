package postgres

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolSettings tunes the pgx connection pool. Zero values fall back to
// the defaults below.
type PoolSettings struct {
	MaxConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NewConnection creates a new PostgreSQL connection pool with default
// pool settings
func NewConnection(databaseURL string) (*pgxpool.Pool, error) {
	return NewConnectionWithSettings(databaseURL, PoolSettings{})
}

// NewConnectionWithSettings creates a new PostgreSQL connection pool
func NewConnectionWithSettings(databaseURL string, settings PoolSettings) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	if settings.MaxConns <= 0 {
		settings.MaxConns = 50
	}
	if settings.ConnMaxLifetime <= 0 {
		settings.ConnMaxLifetime = 1 * time.Hour
	}
	if settings.ConnMaxIdleTime <= 0 {
		settings.ConnMaxIdleTime = 10 * time.Minute
	}

	// Configure connection pool
	config.MaxConns = settings.MaxConns
	config.MinConns = 5
	config.HealthCheckPeriod = 1 * time.Minute
	config.MaxConnLifetime = settings.ConnMaxLifetime
	config.MaxConnIdleTime = settings.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return pool, nil
}

// Close closes the database connection pool
func Close(pool *pgxpool.Pool) {
	pool.Close()
}

// RunMigrations executes SQL migration files from a directory
func RunMigrations(pool *pgxpool.Pool, migrationsDir string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	migrationSQL, err := os.ReadFile(migrationsDir + "/001_init_schema.up.sql")
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	if _, err := pool.Exec(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	return nil
}
