package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/taskpilot/internal/assistant"
	"github.com/balkashynov/taskpilot/internal/db"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errNoFieldsToUpdate   = errors.New("no fields to update")
	errSessionNotFound    = errors.New("chat session not found")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// mapError turns store and session errors into API errors. Anything not
// recognized is an internal error and its text is not exposed.
func mapError(err error) apiError {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return newNotFoundError(db.ErrNotFound.Error())
	case errors.Is(err, db.ErrInvalidTask):
		return newBadRequestError(err.Error())
	case errors.Is(err, db.ErrDuplicateID):
		return newConflictError(db.ErrDuplicateID.Error())
	case errors.Is(err, assistant.ErrEmptyMessage):
		return newBadRequestError(assistant.ErrEmptyMessage.Error())
	case errors.Is(err, assistant.ErrBusy):
		return newConflictError(assistant.ErrBusy.Error())
	case errors.Is(err, assistant.ErrNothingToUndo):
		return newConflictError(assistant.ErrNothingToUndo.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
