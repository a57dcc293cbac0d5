package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/rendering"
)

// RequestError is a client error with an explicit status.
type RequestError struct {
	Status  int
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

func badRequest(format string, args ...any) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var reqErr *RequestError
	var parseErr *record.ParseError
	var notObject *record.NotObjectError
	var tooLarge *http.MaxBytesError
	var extractErr *llm.ExtractionError

	switch {
	case errors.As(err, &reqErr):
		return reqErr.Status
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &parseErr), errors.As(err, &notObject), errors.Is(err, rendering.ErrUnknownLayout):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrRunNotFound):
		return http.StatusNotFound
	case errors.As(err, &extractErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
