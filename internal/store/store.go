package store

import (
	"context"
	"time"
)

// Store defines the persistence layer interface for diff summary history.
type Store interface {
	// Run management
	CreateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Per-file statistics
	SaveFileStats(ctx context.Context, runID string, stats []FileStat) error
	GetFileStats(ctx context.Context, runID string) ([]FileStat, error)

	// Utility
	Close() error
}

// Run represents one summarized diff.
type Run struct {
	RunID        string
	Timestamp    time.Time
	Repository   string
	BaseRef      string
	TargetRef    string
	FilesChanged int
	Additions    int
	Deletions    int
}

// FileStat records the change counts for a single file within a run.
type FileStat struct {
	Path    string
	Added   int
	Removed int
	Hunks   int
}
