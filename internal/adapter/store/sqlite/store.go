package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bkyoung/diffscope/internal/store"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Metadata about each summarized diff
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		repository TEXT NOT NULL,
		base_ref TEXT NOT NULL,
		target_ref TEXT NOT NULL,
		files_changed INTEGER NOT NULL DEFAULT 0,
		additions INTEGER NOT NULL DEFAULT 0,
		deletions INTEGER NOT NULL DEFAULT 0
	);

	-- Per-file change counts for each run
	CREATE TABLE IF NOT EXISTS file_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		added INTEGER NOT NULL DEFAULT 0,
		removed INTEGER NOT NULL DEFAULT 0,
		hunks INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_file_stats_run ON file_stats(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun stores a new run.
func (s *Store) CreateRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO runs (run_id, timestamp, repository, base_ref, target_ref, files_changed, additions, deletions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Timestamp.Unix(),
		run.Repository,
		run.BaseRef,
		run.TargetRef,
		run.FilesChanged,
		run.Additions,
		run.Deletions,
	)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
		SELECT run_id, timestamp, repository, base_ref, target_ref, files_changed, additions, deletions
		FROM runs WHERE run_id = ?
	`

	var run store.Run
	var ts int64
	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&ts,
		&run.Repository,
		&run.BaseRef,
		&run.TargetRef,
		&run.FilesChanged,
		&run.Additions,
		&run.Deletions,
	)
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	run.Timestamp = time.Unix(ts, 0)

	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT run_id, timestamp, repository, base_ref, target_ref, files_changed, additions, deletions
		FROM runs ORDER BY timestamp DESC LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var ts int64
		if err := rows.Scan(
			&run.RunID,
			&ts,
			&run.Repository,
			&run.BaseRef,
			&run.TargetRef,
			&run.FilesChanged,
			&run.Additions,
			&run.Deletions,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = time.Unix(ts, 0)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// SaveFileStats stores the per-file counts for a run in one transaction.
func (s *Store) SaveFileStats(ctx context.Context, runID string, stats []store.FileStat) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO file_stats (run_id, path, added, removed, hunks) VALUES (?, ?, ?, ?, ?)`
	for _, fs := range stats {
		if _, err := tx.ExecContext(ctx, query, runID, fs.Path, fs.Added, fs.Removed, fs.Hunks); err != nil {
			return fmt.Errorf("failed to save file stat for %s: %w", fs.Path, err)
		}
	}

	return tx.Commit()
}

// GetFileStats retrieves the per-file counts for a run, in insertion order.
func (s *Store) GetFileStats(ctx context.Context, runID string) ([]store.FileStat, error) {
	query := `SELECT path, added, removed, hunks FROM file_stats WHERE run_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}
	defer rows.Close()

	var stats []store.FileStat
	for rows.Next() {
		var fs store.FileStat
		if err := rows.Scan(&fs.Path, &fs.Added, &fs.Removed, &fs.Hunks); err != nil {
			return nil, fmt.Errorf("failed to scan file stat: %w", err)
		}
		stats = append(stats, fs)
	}

	return stats, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
