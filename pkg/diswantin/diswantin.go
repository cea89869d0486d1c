// Package diswantin embeds the task planner into a host application.
// The host provides (or lets the app create) a Postgres pool, mounts
// the HTTP routes on its own gin engine, and drives the lifecycle.
package diswantin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"diswantin/internal/domain/repositories"
	"diswantin/internal/repository/postgres"
	"diswantin/internal/usecase"
)

// App is the embeddable task planner
type App struct {
	// Core components
	tasks *usecase.TaskService
	auth  *usecase.AuthService

	taskRepo    repositories.TaskRepository
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository

	// Database
	pool      *pgxpool.Pool
	dbMode    DBMode
	closePool bool // Close pool on shutdown if separate

	// Configuration
	config *Config
	logger *zap.Logger

	// Lifecycle
	started bool
	mu      sync.RWMutex
}

// New creates a new App instance with functional options
func New(opts ...Option) (*App, error) {
	// Apply default config
	cfg := &Config{
		DBMode:        DBModeSeparate,
		AutoMigration: true,
		MigrationsDir: "migrations",
		RoutePrefix:   "/api/v1",
		SessionTTL:    usecase.DefaultSessionTTL,
		Logger:        zap.L(), // Use global logger
	}

	// Apply user options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	// Validate configuration
	if cfg.DBMode == DBModeShared && cfg.Pool == nil {
		return nil, fmt.Errorf("shared DB mode requires a connection pool")
	}
	if cfg.DBMode == DBModeSeparate && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("separate DB mode requires a database URL")
	}

	a := &App{
		config: cfg,
		logger: cfg.Logger,
		dbMode: cfg.DBMode,
	}

	// Setup database
	if err := a.setupDatabase(); err != nil {
		return nil, fmt.Errorf("database setup failed: %w", err)
	}

	// Run migrations
	if cfg.AutoMigration {
		if err := a.runMigrations(); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	a.initComponents()

	a.logger.Info("App initialized",
		zap.String("db_mode", modeToString(cfg.DBMode)),
		zap.String("route_prefix", cfg.RoutePrefix),
		zap.Duration("session_ttl", cfg.SessionTTL),
	)

	return a, nil
}

func (a *App) setupDatabase() error {
	if a.config.DBMode == DBModeShared {
		// Use existing pool
		a.pool = a.config.Pool
		a.closePool = false
		a.logger.Info("Using shared database pool")
		return nil
	}

	a.logger.Info("Creating separate database pool")

	pool, err := postgres.NewConnection(a.config.DatabaseURL)
	if err != nil {
		return err
	}

	a.pool = pool
	a.closePool = true
	a.logger.Info("Separate database pool established")
	return nil
}

func (a *App) runMigrations() error {
	a.logger.Info("Running database migrations")
	if err := postgres.RunMigrations(a.pool, a.config.MigrationsDir); err != nil {
		return err
	}
	a.logger.Info("Database migrations completed")
	return nil
}

func (a *App) initComponents() {
	a.taskRepo = postgres.NewTaskRepository(a.pool)
	a.userRepo = postgres.NewUserRepository(a.pool)
	a.sessionRepo = postgres.NewSessionRepository(a.pool)

	a.tasks = usecase.NewTaskService(a.taskRepo, a.logger.Named("tasks"))
	a.auth = usecase.NewAuthService(a.userRepo, a.sessionRepo, a.config.SessionTTL, a.logger.Named("auth"))
}

// Tasks returns the task service for programmatic use by the host
func (a *App) Tasks() *usecase.TaskService {
	return a.tasks
}

// Auth returns the auth service for programmatic use by the host
func (a *App) Auth() *usecase.AuthService {
	return a.auth
}

// SweepExpiredSessions removes expired login sessions. Hosts that do
// not mount the built-in cron can call this from their own scheduler.
func (a *App) SweepExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return a.auth.SweepExpiredSessions(ctx, now)
}

func modeToString(mode DBMode) string {
	if mode == DBModeShared {
		return "shared"
	}
	return "separate"
}
