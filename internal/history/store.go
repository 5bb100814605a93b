// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records transcoding runs in a SQLite database so past
// conversions can be listed and exported.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/gs-transcoder/pkg/types"
)

const defaultMaxResults = 20

// timeLayout is fixed-width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the database at cfg.Path, creating the schema if it
// does not exist.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("history path is not configured")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			operation TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			device TEXT,
			resolution INTEGER,
			first_page INTEGER,
			last_page INTEGER,
			status TEXT NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts run. The ID field is ignored.
func (s *Store) Record(ctx context.Context, run types.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, operation, input, output, device, resolution,
			first_page, last_page, status, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(timeLayout),
		string(run.Operation),
		run.Input,
		run.Output,
		run.Device,
		run.Resolution,
		run.FirstPage,
		run.LastPage,
		string(run.Status),
		run.Error,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording run for %s: %w", run.Input, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. A non-positive limit uses
// the configured default.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, operation, input, output, device, resolution,
			first_page, last_page, status, error, duration_ms
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var (
			r          types.Run
			startedAt  string
			op, status string
			device     sql.NullString
			errText    sql.NullString
			resolution sql.NullInt64
			firstPage  sql.NullInt64
			lastPage   sql.NullInt64
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &startedAt, &op, &r.Input, &r.Output, &device, &resolution,
			&firstPage, &lastPage, &status, &errText, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		r.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
		}
		r.Operation = types.Operation(op)
		r.Status = types.RunStatus(status)
		r.Device = device.String
		r.Error = errText.String
		r.Resolution = int(resolution.Int64)
		r.FirstPage = int(firstPage.Int64)
		r.LastPage = int(lastPage.Int64)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
