package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/taskpilot/internal/db"
	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

type createTaskRequest struct {
	Title       string          `json:"title" binding:"required,max=255"`
	Description string          `json:"description"`
	Status      models.Status   `json:"status"`
	Priority    models.Priority `json:"priority"`
	// DueDate accepts every format the chat does ("15/12/2024", "3 days", ...)
	DueDate string `json:"dueDate"`
}

// updateTaskRequest is a partial update. A blank dueDate clears the due
// date, as does clearDueDate.
type updateTaskRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Status       *models.Status   `json:"status"`
	Priority     *models.Priority `json:"priority"`
	DueDate      *string          `json:"dueDate"`
	ClearDueDate bool             `json:"clearDueDate"`
}

// fields converts the request into a partial update
func (r updateTaskRequest) fields() (models.TaskFields, error) {
	fields := models.TaskFields{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Status != nil {
		if !r.Status.Valid() {
			return models.TaskFields{}, errInvalidRequestBody
		}
		fields.Status = r.Status
	}
	if r.Priority != nil {
		if !r.Priority.Valid() {
			return models.TaskFields{}, errInvalidRequestBody
		}
		fields.Priority = r.Priority
	}
	switch {
	case r.ClearDueDate, r.DueDate != nil && strings.TrimSpace(*r.DueDate) == "":
		fields.ClearDueDate = true
	case r.DueDate != nil:
		due, err := parser.ParseDueDate(*r.DueDate)
		if err != nil {
			return models.TaskFields{}, err
		}
		fields.DueDate = due
	}
	return fields, nil
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	opts := db.TaskQueryOptions{
		Search: c.Query("q"),
		SortBy: c.DefaultQuery("sort", db.SortCreated),
	}

	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			abort(c, newBadRequestError("invalid status filter"))
			return
		}
		opts.Status = status
	}
	if raw := c.Query("priority"); raw != "" {
		priority, ok := models.ParsePriority(raw)
		if !ok {
			abort(c, newBadRequestError("invalid priority filter"))
			return
		}
		opts.Priority = priority
	}
	if opts.SortBy != db.SortCreated && opts.SortBy != db.SortDue {
		abort(c, newBadRequestError("sort must be created or due"))
		return
	}

	tasks, err := h.tasks.Query(c, opts)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to query tasks")
		abort(c, mapError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *handlerImpl) HandleGetBoard(c *gin.Context) {
	tasks, err := h.tasks.Query(c, db.TaskQueryOptions{})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks for board")
		abort(c, mapError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": db.Board(tasks)})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, err := h.tasks.Find(c, c.Param("id"))
	if err != nil {
		abort(c, mapError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	draft := models.Draft{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
	}
	draft.DueDate, err = parser.ParseDueDate(req.DueDate)
	if err != nil {
		abort(c, newBadRequestError(err.Error()))
		return
	}

	task, err := h.tasks.Create(c, draft.WithDefaults())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, mapError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fields, err := req.fields()
	if err != nil {
		abort(c, newBadRequestError(err.Error()))
		return
	}
	if fields.IsEmpty() {
		abort(c, newBadRequestError(errNoFieldsToUpdate.Error()))
		return
	}

	task, err := h.tasks.Update(c, c.Param("id"), fields)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to update task")
		abort(c, mapError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	task, err := h.tasks.Delete(c, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to delete task")
		abort(c, mapError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}
