package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return New(conn), mock
}

func TestCreateRun(t *testing.T) {
	database, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec("INSERT INTO generation_runs").
		WithArgs(id.String(), "upload", "{professional,modern}", StatusRunning).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := database.CreateRun(context.Background(), Run{ID: id, Source: "upload", Layouts: []string{"professional", "modern"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLayoutOutcome_NullsEmptyText(t *testing.T) {
	database, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec("INSERT INTO layout_outcomes").
		WithArgs(id.String(), "compact", "placeholder", nil, 6, 4200, int64(1500), "all services failed").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := database.SaveLayoutOutcome(context.Background(), LayoutOutcome{
		RunID:        id,
		Layout:       "compact",
		Outcome:      "placeholder",
		Attempts:     6,
		MarkupLength: 4200,
		DurationMs:   1500,
		ErrorMessage: "all services failed",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRun(t *testing.T) {
	database, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE generation_runs SET status").
		WithArgs(StatusCompleted, id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, database.CompleteRun(context.Background(), id, StatusCompleted))

	mock.ExpectExec("UPDATE generation_runs SET status").
		WithArgs(StatusCompleted, id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, database.CompleteRun(context.Background(), id, StatusCompleted), ErrRunNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRun_WrapsDriverError(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectExec("INSERT INTO generation_runs").WillReturnError(errors.New("connection reset"))

	err := database.CreateRun(context.Background(), Run{ID: uuid.New(), Source: "cli"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create run")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetRun(t *testing.T) {
	database, mock := newMock(t)
	id := uuid.New()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "source", "layouts", "status", "created_at", "completed_at"}).
		AddRow(id.String(), "render", "professional,compact", StatusCompleted, created, created.Add(time.Second))
	mock.ExpectQuery("SELECT (.+) FROM generation_runs WHERE id").WithArgs(id.String()).WillReturnRows(rows)

	run, err := database.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, []string{"professional", "compact"}, run.Layouts)
	require.NotNil(t, run.CompletedAt)
	assert.Equal(t, created.Add(time.Second), *run.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRun_NotFound(t *testing.T) {
	database, mock := newMock(t)
	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM generation_runs WHERE id").
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := database.GetRun(context.Background(), id)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_ClampsLimit(t *testing.T) {
	database, mock := newMock(t)
	created := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "source", "layouts", "status", "created_at", "completed_at"}).
		AddRow(uuid.New().String(), "cli", "", StatusRunning, created, nil)
	mock.ExpectQuery("SELECT (.+) FROM generation_runs ORDER BY created_at DESC").WithArgs(20).WillReturnRows(rows)

	runs, err := database.ListRuns(context.Background(), 1000)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Empty(t, runs[0].Layouts)
	assert.Nil(t, runs[0].CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLayoutOutcomes(t *testing.T) {
	database, mock := newMock(t)
	id := uuid.New()
	created := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"run_id", "layout", "outcome", "service", "attempts", "markup_length", "duration_ms", "error_message", "created_at"}).
		AddRow(id.String(), "compact", "succeeded", "latexonline-get", 1, 3000, 800, "", created).
		AddRow(id.String(), "modern", "succeeded_simplified", "latex-on-http", 5, 1200, 9100, "", created)
	mock.ExpectQuery("SELECT (.+) FROM layout_outcomes").WithArgs(id.String()).WillReturnRows(rows)

	out, err := database.ListLayoutOutcomes(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "latex-on-http", out[1].Service)
	assert.Equal(t, int64(9100), out[1].DurationMs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_EmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), "  ", DefaultCLIOptions())
	assert.ErrorContains(t, err, "DATABASE_URL is empty")
}

func TestRunMigrations_NilIsNoop(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil))
}

func TestMigrationFilesEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	data, err := migrationFiles.ReadFile("migrations/" + entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS layout_outcomes")
}
