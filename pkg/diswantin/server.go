package diswantin

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"diswantin/internal/delivery/rest"
	"diswantin/internal/delivery/rest/middleware"
)

// RegisterRoutes mounts the app's HTTP routes on the provided gin
// engine under the configured RoutePrefix
func (a *App) RegisterRoutes(engine *gin.Engine) error {
	if engine == nil {
		return fmt.Errorf("engine cannot be nil")
	}

	h := rest.NewHandler(a.tasks, a.auth, a.logger.Named("rest"))

	group := engine.Group(a.config.RoutePrefix)

	// Health check endpoint
	group.GET("/health", func(c *gin.Context) {
		status := a.HealthCheck(c.Request.Context())
		code := http.StatusOK
		if status.Status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	// Session endpoints (no auth middleware; sign-in creates the session)
	group.POST("/auth/sessions", h.SignIn)
	group.DELETE("/auth/sessions", h.SignOut)

	// Task routes
	tasks := group.Group("/tasks")
	tasks.Use(middleware.Auth(a.auth))
	{
		tasks.GET("/current", h.CurrentTask)
		tasks.GET("/search", h.SearchTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.POST("/:id/done", h.MarkTaskDone)
		tasks.DELETE("/:id/done", h.UnmarkTaskDone)
	}

	// Settings
	settings := group.Group("/settings")
	settings.Use(middleware.Auth(a.auth))
	settings.PUT("/timezone", h.UpdateTimezone)

	a.logger.Info("Routes registered",
		zap.String("prefix", a.config.RoutePrefix),
	)

	return nil
}
