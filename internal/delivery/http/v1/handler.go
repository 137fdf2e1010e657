package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/balkashynov/taskpilot/internal/assistant"
	"github.com/balkashynov/taskpilot/internal/db"
	"github.com/balkashynov/taskpilot/internal/models"
)

type Handler interface {
	HandleListTasks(c *gin.Context)
	HandleGetBoard(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleCreateSession(c *gin.Context)
	HandleGetSession(c *gin.Context)
	HandlePostMessage(c *gin.Context)
	HandleUndo(c *gin.Context)

	HandleHealth(c *gin.Context)
	HandleRequestLog(c *gin.Context)
}

// TaskService is the task-mutation boundary exposed over HTTP
type TaskService interface {
	Create(ctx context.Context, draft models.Draft) (models.Task, error)
	Update(ctx context.Context, id string, fields models.TaskFields) (models.Task, error)
	Delete(ctx context.Context, id string) (models.Task, error)
	Find(ctx context.Context, id string) (models.Task, error)
	Query(ctx context.Context, opts db.TaskQueryOptions) ([]models.Task, error)
}

type handlerImpl struct {
	logger   zerolog.Logger
	tasks    TaskService
	sessions *assistant.Sessions
}

func New(
	logger zerolog.Logger,
	taskService TaskService,
	sessions *assistant.Sessions,
) Handler {
	return &handlerImpl{
		logger:   logger,
		tasks:    taskService,
		sessions: sessions,
	}
}

// RegisterRoutes mounts the v1 API under /api/v1. metrics may be nil.
func RegisterRoutes(router gin.IRouter, h Handler, metrics http.Handler) {
	router.GET("/healthz", h.HandleHealth)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	api := router.Group("/api/v1")
	api.Use(h.HandleRequestLog)

	tasksRouter := api.Group("/tasks")
	tasksRouter.GET("", h.HandleListTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/board", h.HandleGetBoard)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PATCH("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)

	chatRouter := api.Group("/chat/sessions")
	chatRouter.POST("", h.HandleCreateSession)
	chatRouter.GET("/:id", h.HandleGetSession)
	chatRouter.POST("/:id/messages", h.HandlePostMessage)
	chatRouter.POST("/:id/undo", h.HandleUndo)
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleRequestLog replaces gin.Logger so access logs go through zerolog
func (h *handlerImpl) HandleRequestLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	event := h.logger.Info()
	if status >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("handled request")
}
