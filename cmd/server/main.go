package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"diswantin/configs"
	"diswantin/infrastructure/logger"
	"diswantin/internal/delivery/rest"
	"diswantin/internal/repository/postgres"
	"diswantin/internal/server"
	"diswantin/internal/usecase"
)

func main() {
	// Initialize logger from environment
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.Named("main")

	// Load configuration
	cfg, err := configs.LoadConfig("")
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize database
	db, err := postgres.NewConnectionWithSettings(cfg.Database.URL, postgres.PoolSettings{
		MaxConns:        int32(cfg.Database.MaxConnections),
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	// Run migrations
	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db, "migrations"); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Initialize repositories
	taskRepo := postgres.NewTaskRepository(db)
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	// Initialize services
	taskService := usecase.NewTaskService(taskRepo, logger.Named("tasks"))
	authService := usecase.NewAuthService(userRepo, sessionRepo, cfg.Auth.SessionTTL, logger.Named("auth"))

	// Initialize HTTP handler and server
	h := rest.NewHandler(taskService, authService, logger.Named("rest"))
	srv := server.NewServer(cfg.Server, h, authService)

	// Periodic cleanup of expired sessions
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Auth.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		removed, err := authService.SweepExpiredSessions(ctx, time.Now())
		if err != nil {
			log.Error("Session sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			log.Info("Swept expired sessions", zap.Int64("removed", removed))
		}
	}); err != nil {
		log.Fatal("Invalid session sweep schedule", zap.Error(err))
	}
	sweeper.Start()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("address", cfg.Server.Address()))

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server shutdown failed", zap.Error(err))
	}

	// Stop the sweeper, waiting for any running job
	<-sweeper.Stop().Done()

	log.Info("Server stopped")
}
