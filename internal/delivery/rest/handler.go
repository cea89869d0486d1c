package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"diswantin/internal/delivery/rest/dto"
	"diswantin/internal/delivery/rest/middleware"
	"diswantin/internal/domain"
	"diswantin/internal/usecase"
)

// Handler handles HTTP requests
type Handler struct {
	tasks  *usecase.TaskService
	auth   *usecase.AuthService
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(tasks *usecase.TaskService, auth *usecase.AuthService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{tasks: tasks, auth: auth, logger: logger}
}

// CurrentTask handles GET /api/v1/tasks/current
func (h *Handler) CurrentTask(c *gin.Context) {
	user := middleware.UserFrom(c)

	task, err := h.tasks.CurrentTask(c.Request.Context(), user, time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if task == nil {
		c.JSON(http.StatusOK, gin.H{"task": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// GetTask handles GET /api/v1/tasks/:id
func (h *Handler) GetTask(c *gin.Context) {
	user := middleware.UserFrom(c)

	view, err := h.tasks.GetTaskDetail(c.Request.Context(), user, c.Param("id"), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateTask handles POST /api/v1/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	form, err := req.ToCreateForm()
	if err != nil {
		h.respondError(c, err)
		return
	}

	user := middleware.UserFrom(c)
	id, err := h.tasks.CreateTask(c.Request.Context(), user, form)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreatedResponse{ID: id})
}

// UpdateTask handles PUT /api/v1/tasks/:id
func (h *Handler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	form, err := req.ToUpdateForm(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	user := middleware.UserFrom(c)
	if err := h.tasks.UpdateTask(c.Request.Context(), user, form); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteTask handles DELETE /api/v1/tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	user := middleware.UserFrom(c)

	if err := h.tasks.DeleteTask(c.Request.Context(), user, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkTaskDone handles POST /api/v1/tasks/:id/done
func (h *Handler) MarkTaskDone(c *gin.Context) {
	user := middleware.UserFrom(c)

	if err := h.tasks.MarkTaskDone(c.Request.Context(), user, c.Param("id"), time.Now()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnmarkTaskDone handles DELETE /api/v1/tasks/:id/done
func (h *Handler) UnmarkTaskDone(c *gin.Context) {
	user := middleware.UserFrom(c)

	if err := h.tasks.UnmarkTaskDone(c.Request.Context(), user, c.Param("id"), time.Now()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchTasks handles GET /api/v1/tasks/search
func (h *Handler) SearchTasks(c *gin.Context) {
	user := middleware.UserFrom(c)

	var cursor *string
	if raw, ok := c.GetQuery("cursor"); ok && raw != "" {
		cursor = &raw
	}

	page, err := h.tasks.SearchTasks(c.Request.Context(), user, c.Query("q"), cursor, time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SignIn handles POST /auth/sessions. The OAuth token exchange happens
// upstream; this endpoint receives the verified profile and issues the
// session cookie.
func (h *Handler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	profile := usecase.GoogleProfile{Subject: req.Subject, Email: req.Email}
	session, err := h.auth.SignIn(c.Request.Context(), profile, req.Timezone, time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// SignOut handles DELETE /auth/sessions
func (h *Handler) SignOut(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookie)
	if token != "" {
		if err := h.auth.SignOut(c.Request.Context(), token); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// UpdateTimezone handles PUT /api/v1/settings/timezone
func (h *Handler) UpdateTimezone(c *gin.Context) {
	var req dto.TimezoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	user := middleware.UserFrom(c)
	if err := h.auth.UpdateTimezone(c.Request.Context(), user.ID, req.Timezone); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError maps domain errors onto HTTP statuses. Storage errors
// surface as 500 and get logged here; the core propagates them
// unchanged.
func (h *Handler) respondError(c *gin.Context, err error) {
	var validation *usecase.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "validation_error",
			Fields: validation.Fields,
		})
	case errors.Is(err, domain.ErrBadParamInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: "task not found",
		})
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthorized",
			Message: "sign in to continue",
		})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	default:
		h.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: "something went wrong",
		})
	}
}
