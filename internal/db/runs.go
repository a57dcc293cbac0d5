package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run ID has no ledger row.
var ErrRunNotFound = errors.New("run not found")

// CreateRun inserts a run in the running state.
func (db *DB) CreateRun(ctx context.Context, run Run) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO generation_runs (id, source, layouts, status)
		 VALUES ($1, $2, $3, $4)`,
		run.ID, run.Source, textArray(run.Layouts), StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// SaveLayoutOutcome stores or replaces the outcome of one layout.
func (db *DB) SaveLayoutOutcome(ctx context.Context, o LayoutOutcome) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO layout_outcomes (run_id, layout, outcome, service, attempts, markup_length, duration_ms, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (run_id, layout) DO UPDATE
		 SET outcome = $3, service = $4, attempts = $5, markup_length = $6, duration_ms = $7, error_message = $8`,
		o.RunID, o.Layout, o.Outcome, nullString(o.Service), o.Attempts, o.MarkupLength, o.DurationMs, nullString(o.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("failed to save outcome for layout %s: %w", o.Layout, err)
	}
	return nil
}

// CompleteRun sets the final status of a run.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE generation_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun returns a run by ID.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	var layouts string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, source, array_to_string(layouts, ','), status, created_at, completed_at
		 FROM generation_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Source, &layouts, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.Layouts = splitLayouts(layouts)
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, source, array_to_string(layouts, ','), status, created_at, completed_at
		 FROM generation_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var layouts string
		if err := rows.Scan(&run.ID, &run.Source, &layouts, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Layouts = splitLayouts(layouts)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListLayoutOutcomes returns the outcomes recorded for a run, ordered by layout.
func (db *DB) ListLayoutOutcomes(ctx context.Context, runID uuid.UUID) ([]LayoutOutcome, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT run_id, layout, outcome, COALESCE(service, ''), attempts, markup_length, duration_ms,
		        COALESCE(error_message, ''), created_at
		 FROM layout_outcomes WHERE run_id = $1 ORDER BY layout`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var out []LayoutOutcome
	for rows.Next() {
		var o LayoutOutcome
		if err := rows.Scan(&o.RunID, &o.Layout, &o.Outcome, &o.Service, &o.Attempts, &o.MarkupLength,
			&o.DurationMs, &o.ErrorMessage, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// textArray renders a Postgres text[] literal. Layout names never contain quotes or commas.
func textArray(values []string) string {
	return "{" + strings.Join(values, ",") + "}"
}

func splitLayouts(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
