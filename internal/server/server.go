package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"diswantin/configs"
	"diswantin/infrastructure/logger"
	"diswantin/internal/delivery/rest"
	"diswantin/internal/delivery/rest/middleware"
	"diswantin/internal/usecase"
)

// Server wraps the gin engine
type Server struct {
	engine     *gin.Engine
	config     configs.ServerConfig
	httpServer *http.Server
}

// NewServer creates a new HTTP server
func NewServer(cfg configs.ServerConfig, h *rest.Handler, auth *usecase.AuthService) *Server {
	engine := gin.New()

	engine.Use(middleware.Logger(logger.Named("http")))
	engine.Use(middleware.Recovery(logger.Named("http")))
	engine.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		engine: engine,
		config: cfg,
	}

	s.registerRoutes(engine, h, auth)

	return s
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes(engine *gin.Engine, h *rest.Handler, auth *usecase.AuthService) {
	// Health check
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Session endpoints (no auth middleware; sign-in creates the session)
	engine.POST("/auth/sessions", h.SignIn)
	engine.DELETE("/auth/sessions", h.SignOut)

	// API v1 routes
	v1 := engine.Group("/api/v1")
	v1.Use(middleware.Auth(auth))
	{
		// Task routes
		v1.GET("/tasks/current", h.CurrentTask)
		v1.GET("/tasks/search", h.SearchTasks)
		v1.POST("/tasks", h.CreateTask)
		v1.GET("/tasks/:id", h.GetTask)
		v1.PUT("/tasks/:id", h.UpdateTask)
		v1.DELETE("/tasks/:id", h.DeleteTask)
		v1.POST("/tasks/:id/done", h.MarkTaskDone)
		v1.DELETE("/tasks/:id/done", h.UnmarkTaskDone)

		// Settings
		v1.PUT("/settings/timezone", h.UpdateTimezone)
	}
}

// Engine returns the underlying gin engine, for embedding into a host
// application's mux.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.config.Address(),
		Handler: s.engine,
	}

	logger.Get().Info("starting HTTP server", zap.String("address", s.config.Address()))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Get().Info("shutting down HTTP server")
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
