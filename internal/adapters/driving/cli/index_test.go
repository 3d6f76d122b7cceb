package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall-cli/internal/core/domain"
)

func TestIndexStatsCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.stats = domain.IndexStats{Backend: "hnsw", Entries: 12, Dimensions: 768, Available: true}

	out, err := execute(context.Background(), "", "index", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Backend: hnsw")
	assert.Contains(t, out, "Entries: 12")
	assert.Contains(t, out, "Dimensions: 768")
}

func TestIndexStatsCmd_Unavailable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.stats = domain.IndexStats{Backend: "qdrant"}

	out, err := execute(context.Background(), "", "index", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: unavailable")
	assert.NotContains(t, out, "Entries")
}

func TestIndexStatsCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.stats = domain.IndexStats{Backend: "hnsw", Entries: 2, Available: true}

	out, err := execute(context.Background(), "", "index", "stats", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"entries": 2`)
}

func TestIndexFlushCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(context.Background(), "", "index", "flush")

	require.NoError(t, err)
	assert.Contains(t, out, "Index flushed.")
	assert.True(t, ts.index.flushed)
}

func TestIndexFlushCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = domain.ErrIndexUnavailable

	_, err := execute(context.Background(), "", "index", "flush")

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestIndexReconcileCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.reconciled = 4

	out, err := execute(context.Background(), "", "index", "reconcile")

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 4 records.")
}

func TestIndexHistoryCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.scheduler.history = []domain.TaskResult{
		{TaskID: domain.TaskIDReconcile, StartedAt: testTime, EndedAt: testTime.Add(2 * time.Second),
			Success: true, ItemsProcessed: 3},
		{TaskID: domain.TaskIDReconcile, StartedAt: testTime, EndedAt: testTime, Error: "rate limited"},
	}

	out, err := execute(context.Background(), "", "index", "history", domain.TaskIDReconcile)

	require.NoError(t, err)
	assert.Contains(t, out, "3 items  ok")
	assert.Contains(t, out, "failed: rate limited")
}

func TestIndexHistoryCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.scheduler.err = nil

	out, err := execute(context.Background(), "", "index", "history", domain.TaskIDIndexFlush)

	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestIndexHistoryCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.scheduler.err = errors.New("boom")

	_, err := execute(context.Background(), "", "index", "history", domain.TaskIDIndexFlush)

	assert.Error(t, err)
}
