package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ssequote/internal/batch"
)

// Run is one recorded batch run.
type Run struct {
	ID         string
	From       int
	To         int
	Processed  int
	Succeeded  int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailureRecord is one failed episode of a recorded run.
type FailureRecord struct {
	RunID   string
	Episode int
	Kind    string
	Message string
}

// Store persists batch summaries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a batch summary and its failures in one transaction.
func (s *Store) Record(ctx context.Context, summary batch.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, range_from, range_to, processed, succeeded, failed, started_at, finished_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		summary.From,
		summary.To,
		summary.Processed,
		summary.Succeeded,
		summary.Failed(),
		formatTime(summary.StartedAt),
		formatTime(summary.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, failure := range summary.Failures {
		message := ""
		if failure.Err != nil {
			message = failure.Err.Error()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_failures (run_id, episode, kind, message) VALUES (?, ?, ?, ?)`,
			summary.RunID, failure.Episode, failure.Kind, message,
		); err != nil {
			return fmt.Errorf("insert failure for episode %d: %w", failure.Episode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record tx: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, range_from, range_to, processed, succeeded, failed, started_at, finished_at
         FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                 Run
			started, finishedAt string
		)
		if err := rows.Scan(&run.ID, &run.From, &run.To, &run.Processed, &run.Succeeded, &run.Failed, &started, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finishedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Failures returns the failed episodes of a run ordered by episode.
func (s *Store) Failures(ctx context.Context, runID string) ([]FailureRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, episode, kind, message FROM run_failures WHERE run_id = ? ORDER BY episode`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var out []FailureRecord
	for rows.Next() {
		var rec FailureRecord
		if err := rows.Scan(&rec.RunID, &rec.Episode, &rec.Kind, &rec.Message); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// FindRun resolves a full or prefix run id.
func (s *Store) FindRun(ctx context.Context, idPrefix string) (Run, error) {
	var (
		run                 Run
		started, finishedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, range_from, range_to, processed, succeeded, failed, started_at, finished_at
         FROM runs WHERE id LIKE ? || '%' ORDER BY started_at DESC LIMIT 1`, idPrefix,
	).Scan(&run.ID, &run.From, &run.To, &run.Processed, &run.Succeeded, &run.Failed, &started, &finishedAt)
	if err != nil {
		return Run{}, fmt.Errorf("find run %q: %w", idPrefix, err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finishedAt)
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
