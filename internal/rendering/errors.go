package rendering

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLayout matches identifiers that name no layout.
	ErrUnknownLayout = errors.New("unknown layout")
	// ErrNilRecord is returned when there is no record to render.
	ErrNilRecord = errors.New("resume record is nil")
)

// RenderError ties a failure to the layout being resolved or rendered.
type RenderError struct {
	Layout Layout
	Err    error
}

func (e *RenderError) Error() string {
	if errors.Is(e.Err, ErrUnknownLayout) {
		return fmt.Sprintf("unknown layout %q", string(e.Layout))
	}
	return fmt.Sprintf("render %s: %v", e.Layout, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// TemplateError is a failure inside the embedded template set. It indicates a broken
// build rather than bad input.
type TemplateError struct {
	Template string
	Cause    error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Template, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}
