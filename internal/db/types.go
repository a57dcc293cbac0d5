package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values.
const (
	StatusRunning              = "running"
	StatusCompleted            = "completed"
	StatusCompletedWithFailure = "completed_with_failures"
	StatusRejected             = "rejected"
)

// Run is one multi-layout generation request.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	Layouts     []string   `json:"layouts"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// LayoutOutcome is the ledger row for one layout of a run.
type LayoutOutcome struct {
	RunID        uuid.UUID `json:"run_id"`
	Layout       string    `json:"layout"`
	Outcome      string    `json:"outcome"`
	Service      string    `json:"service,omitempty"`
	Attempts     int       `json:"attempts"`
	MarkupLength int       `json:"markup_length"`
	DurationMs   int64     `json:"duration_ms"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
