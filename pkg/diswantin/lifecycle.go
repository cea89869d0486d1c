package diswantin

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Start marks the app as running. Call after mounting routes and
// before serving traffic.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return fmt.Errorf("already started")
	}

	a.started = true
	a.logger.Info("App started")
	return nil
}

// Shutdown gracefully stops the app and releases the database pool if
// the app owns it
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		return nil
	}

	a.logger.Info("Shutting down")

	select {
	case <-ctx.Done():
		a.logger.Warn("Shutdown context cancelled", zap.Error(ctx.Err()))
		return ctx.Err()
	default:
	}

	if a.closePool && a.pool != nil {
		a.pool.Close()
		a.logger.Info("Database pool closed")
	}

	a.started = false
	a.logger.Info("Shutdown complete")
	return nil
}

// HealthCheck returns health status for monitoring
func (a *App) HealthCheck(ctx context.Context) HealthStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()

	status := HealthStatus{
		Started: a.started,
	}

	if !a.started {
		status.Status = "stopped"
		return status
	}

	// Check database
	if err := a.pool.Ping(ctx); err != nil {
		status.Status = "unhealthy"
		status.Database = "disconnected"
		status.Error = err.Error()
		return status
	}
	status.Database = "connected"

	status.Status = "healthy"
	return status
}

// HealthStatus represents the health status of the app
type HealthStatus struct {
	Status   string `json:"status"`   // healthy, unhealthy, stopped
	Database string `json:"database"` // connected, disconnected
	Started  bool   `json:"started"`
	Error    string `json:"error,omitempty"`
}
