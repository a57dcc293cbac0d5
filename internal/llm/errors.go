package llm

import "fmt"

// ExtractionError represents a failed extraction. Raw carries the model output, when
// there was one, so callers can report it.
type ExtractionError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
