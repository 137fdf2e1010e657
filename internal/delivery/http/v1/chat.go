package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/taskpilot/internal/assistant"
	"github.com/balkashynov/taskpilot/internal/models"
)

type postMessageRequest struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	ID       string               `json:"id"`
	State    string               `json:"state"`
	Loading  bool                 `json:"loading"`
	CanUndo  bool                 `json:"canUndo"`
	Messages []models.ChatMessage `json:"messages"`
}

func newSessionResponse(s *assistant.Session) sessionResponse {
	messages := s.Messages()
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return sessionResponse{
		ID:       s.ID(),
		State:    s.State().String(),
		Loading:  s.IsLoading(),
		CanUndo:  s.CanUndo(),
		Messages: messages,
	}
}

func (h *handlerImpl) session(c *gin.Context) (*assistant.Session, bool) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		abort(c, newNotFoundError(errSessionNotFound.Error()))
		return nil, false
	}
	return s, true
}

func (h *handlerImpl) HandleCreateSession(c *gin.Context) {
	s := h.sessions.Create()
	h.logger.Debug().
		Str("session_id", s.ID()).
		Msg("created chat session")

	c.JSON(http.StatusCreated, newSessionResponse(s))
}

func (h *handlerImpl) HandleGetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(s))
}

// HandlePostMessage runs one chat turn. Failed turns still answer 200;
// the outcome is reported in the body like it is in the transcript.
func (h *handlerImpl) HandlePostMessage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := s.Submit(c, req.Message)
	if err != nil {
		abort(c, mapError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *handlerImpl) HandleUndo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	task, err := s.Undo(c)
	if err != nil {
		if !errors.Is(err, assistant.ErrNothingToUndo) && !errors.Is(err, assistant.ErrBusy) {
			h.logger.Error().
				Err(err).
				Str("session_id", s.ID()).
				Msg("failed to undo deletion")
		}
		abort(c, mapError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}
