package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotObject is matched by NotObjectError.
var ErrNotObject = errors.New("record is not a JSON object")

// ParseError represents a record that is not valid JSON.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NotObjectError is returned when the top-level value is not a mapping.
// No layout can proceed without a mapping, so this failure is global.
type NotObjectError struct {
	Got string
}

func (e *NotObjectError) Error() string {
	return fmt.Sprintf("record must be a JSON object, got %s", e.Got)
}

func (e *NotObjectError) Is(target error) bool {
	return target == ErrNotObject
}

// FieldError describes one field that could not be coerced into the canonical schema.
type FieldError struct {
	Path    string
	Message string
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Message)
}

// MalformedRecordError lists fields whose types cannot be normalized.
// It is fatal for rendering, but callers report it per layout.
type MalformedRecordError struct {
	Fields []FieldError
}

func (e *MalformedRecordError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("malformed record: %s", strings.Join(parts, "; "))
}

// ExtractError represents a failure to locate a JSON block in free-form text.
type ExtractError struct {
	Message string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extract error: %s", e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}
