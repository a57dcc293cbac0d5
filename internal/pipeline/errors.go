package pipeline

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/rendering"
)

// Stage names the step at which a layout failed.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageNormalize Stage = "normalize"
	StageRender    Stage = "render"
	StageCompile   Stage = "compile"
)

// LayoutError is a failure confined to one layout.
type LayoutError struct {
	Layout rendering.Layout
	Stage  Stage
	Cause  error
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout %s failed at %s: %v", e.Layout, e.Stage, e.Cause)
}

func (e *LayoutError) Unwrap() error {
	return e.Cause
}

// PanicError wraps a value recovered while rendering a layout.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
