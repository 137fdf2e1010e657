package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies provider failures
type ErrorType int8

const (
	ErrorTypeRateLimit ErrorType = iota
	ErrorTypeTransient
	ErrorTypeAuth
	ErrorTypeBadRequest
	ErrorTypeEmptyResponse
	ErrorTypeUnknown
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeAuth:
		return "auth"
	case ErrorTypeBadRequest:
		return "bad_request"
	case ErrorTypeEmptyResponse:
		return "empty_response"
	case ErrorTypeUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Error is a classified provider failure
type Error struct {
	Err        error
	Message    string
	Type       ErrorType
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("LLM error (%s): %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("LLM error (%s): %v", e.Type, e.Err)
	}
	return fmt.Sprintf("LLM error (%s): status %d", e.Type, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// classifyStatus maps an HTTP status from a provider to an Error
func classifyStatus(statusCode int, err error) *Error {
	errType := ErrorTypeUnknown
	switch {
	case statusCode == http.StatusTooManyRequests:
		errType = ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		errType = ErrorTypeAuth
	case statusCode == http.StatusRequestTimeout || statusCode >= http.StatusInternalServerError:
		errType = ErrorTypeTransient
	case statusCode >= http.StatusBadRequest:
		errType = ErrorTypeBadRequest
	}
	return &Error{Err: err, Type: errType, StatusCode: statusCode}
}

// classifyTransport handles failures that carry no status code
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Err: err, Type: ErrorTypeTransient}
	}
	return &Error{Err: err, Type: ErrorTypeUnknown}
}

// ErrorTypeOf returns the classification label of err, "unknown" for
// unclassified errors and "" for nil
func ErrorTypeOf(err error) string {
	if err == nil {
		return ""
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type.String()
	}
	return classifyTransport(err).Type.String()
}
