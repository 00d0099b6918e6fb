package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffscope/internal/adapter/store/sqlite"
	"github.com/bkyoung/diffscope/internal/store"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	// Use in-memory database for testing
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err, "failed to create test store")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestStore_CreateRun_GetRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := store.Run{
		RunID:        "run-123",
		Timestamp:    time.Now().Truncate(time.Second), // Truncate to avoid precision issues
		Repository:   "demo",
		BaseRef:      "main",
		TargetRef:    "feature",
		FilesChanged: 3,
		Additions:    12,
		Deletions:    5,
	}

	err := s.CreateRun(ctx, run)
	require.NoError(t, err)

	retrieved, err := s.GetRun(ctx, run.RunID)
	require.NoError(t, err)

	assert.Equal(t, run.RunID, retrieved.RunID)
	assert.Equal(t, run.Repository, retrieved.Repository)
	assert.Equal(t, run.BaseRef, retrieved.BaseRef)
	assert.Equal(t, run.TargetRef, retrieved.TargetRef)
	assert.Equal(t, run.FilesChanged, retrieved.FilesChanged)
	assert.Equal(t, run.Additions, retrieved.Additions)
	assert.Equal(t, run.Deletions, retrieved.Deletions)
	assert.True(t, run.Timestamp.Equal(retrieved.Timestamp))
}

func TestStore_GetRun_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.Error(t, err)
}

func TestStore_ListRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	runs := []store.Run{
		{RunID: "run-1", Timestamp: now.Add(-2 * time.Hour), Repository: "repo", BaseRef: "main", TargetRef: "f1"},
		{RunID: "run-2", Timestamp: now.Add(-1 * time.Hour), Repository: "repo", BaseRef: "main", TargetRef: "f2"},
		{RunID: "run-3", Timestamp: now, Repository: "repo", BaseRef: "main", TargetRef: "f3"},
	}
	for _, run := range runs {
		require.NoError(t, s.CreateRun(ctx, run))
	}

	listed, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)

	require.Len(t, listed, 2)
	assert.Equal(t, "run-3", listed[0].RunID, "newest run first")
	assert.Equal(t, "run-2", listed[1].RunID)
}

func TestStore_SaveFileStats_GetFileStats(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := store.Run{RunID: "run-1", Timestamp: time.Now(), Repository: "repo", BaseRef: "main", TargetRef: "f"}
	require.NoError(t, s.CreateRun(ctx, run))

	stats := []store.FileStat{
		{Path: "a.go", Added: 3, Removed: 1, Hunks: 2},
		{Path: "b.go", Added: 0, Removed: 7, Hunks: 1},
	}
	require.NoError(t, s.SaveFileStats(ctx, run.RunID, stats))

	retrieved, err := s.GetFileStats(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, stats, retrieved)
}

func TestStore_SaveFileStats_Empty(t *testing.T) {
	s := setupTestStore(t)

	assert.NoError(t, s.SaveFileStats(context.Background(), "run-x", nil))
}
