package compile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMarkupTooLong means a service was skipped because the markup exceeds its limit.
	ErrMarkupTooLong = errors.New("markup exceeds service length limit")
	// ErrHTMLResponse means a service answered with an HTML page instead of a document.
	ErrHTMLResponse = errors.New("service returned an HTML page")
	// ErrNotDocument means the response could not be interpreted as a PDF.
	ErrNotDocument = errors.New("response is not a PDF document")
	// ErrPollExhausted means an asynchronous job did not finish within the polling budget.
	ErrPollExhausted = errors.New("polling attempts exhausted")
)

// ServiceError represents one failed attempt against a backend compilation service.
type ServiceError struct {
	Service string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("service %s: %s: %v", e.Service, e.Message, e.Cause)
	}
	return fmt.Sprintf("service %s: %s", e.Service, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// AllServicesFailedError is reported when every service failed for one rendered document.
type AllServicesFailedError struct {
	Layout string
	Pass   Pass
	Causes []error
}

func (e *AllServicesFailedError) Error() string {
	parts := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		parts[i] = c.Error()
	}
	return fmt.Sprintf("all services failed for %s (%s pass): %s", e.Layout, e.Pass, strings.Join(parts, "; "))
}

func (e *AllServicesFailedError) Unwrap() []error {
	return e.Causes
}

// DegradedError marks a result whose artifact is the placeholder document.
type DegradedError struct {
	Layout string
	Cause  error
}

func (e *DegradedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("layout %s degraded to placeholder: %v", e.Layout, e.Cause)
	}
	return fmt.Sprintf("layout %s degraded to placeholder", e.Layout)
}

func (e *DegradedError) Unwrap() error {
	return e.Cause
}
