// Package state persists project run records (installs and starts) in a
// local SQLite database so later invocations can tell whether a project
// is running.
package state

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a SQLite-backed run-state store.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the store at path (":memory:" for tests), opens the
// database and applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("state database path is required")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// BeginRun records a new running install or start of the project and
// returns the created record.
func (s *Store) BeginRun(ctx context.Context, project, version string, kind RunKind) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:        uuid.New().String(),
		Project:   project,
		Version:   version,
		Kind:      kind,
		Status:    RunStatusRunning,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const query = `
		INSERT INTO runs (id, project, version, kind, status, started_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query,
		run.ID, run.Project, run.Version, run.Kind, run.Status,
		run.StartedAt, run.CreatedAt, run.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// FinishRun marks the run completed, or failed when runErr is non-nil.
func (s *Store) FinishRun(ctx context.Context, id string, runErr error) error {
	status := RunStatusCompleted
	var errMsg *string
	if runErr != nil {
		status = RunStatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}

	now := time.Now().UTC()
	const query = `
		UPDATE runs SET status = ?, error = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, status, errMsg, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// ActiveStart returns the most recent running start record of the
// project, or ErrNotStarted.
func (s *Store) ActiveStart(ctx context.Context, project string) (*Run, error) {
	const query = `
		SELECT id, project, version, kind, status, started_at, completed_at, error, created_at, updated_at
		FROM runs
		WHERE project = ? AND kind = ? AND status = ?
		ORDER BY started_at DESC
		LIMIT 1`

	run := &Run{}
	err := s.db.QueryRowContext(ctx, query, project, RunKindStart, RunStatusRunning).Scan(
		&run.ID, &run.Project, &run.Version, &run.Kind, &run.Status,
		&run.StartedAt, &run.CompletedAt, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotStarted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active start: %w", err)
	}
	return run, nil
}

// StopProject marks the project's running start record stopped and
// returns it. ErrNotStarted when the project has none.
func (s *Store) StopProject(ctx context.Context, project string) (*Run, error) {
	run, err := s.ActiveStart(ctx, project)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	const query = `
		UPDATE runs SET status = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, RunStatusStopped, now, now, run.ID); err != nil {
		return nil, fmt.Errorf("failed to stop run: %w", err)
	}

	run.Status = RunStatusStopped
	run.CompletedAt = &now
	run.UpdatedAt = now
	return run, nil
}

// History returns the project's runs, newest first.
func (s *Store) History(ctx context.Context, project string) ([]*Run, error) {
	const query = `
		SELECT id, project, version, kind, status, started_at, completed_at, error, created_at, updated_at
		FROM runs
		WHERE project = ?
		ORDER BY started_at DESC`

	rows, err := s.db.QueryContext(ctx, query, project)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(
			&run.ID, &run.Project, &run.Version, &run.Kind, &run.Status,
			&run.StartedAt, &run.CompletedAt, &run.Error, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
