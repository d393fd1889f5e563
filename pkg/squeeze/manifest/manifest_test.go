package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

func testResults() []types.Result {
	return []types.Result{
		{Path: "/docs/a.pdf", OriginalSize: 10 * types.MiB, OptimizedSize: 4 * types.MiB, Status: types.StatusOptimized},
		{Path: "/docs/b.pdf", OriginalSize: 2 * types.MiB, OptimizedSize: 2 * types.MiB, Status: types.StatusNoGain},
		{Path: "/docs/c.pdf", OriginalSize: types.MiB, Status: types.StatusFailed, Error: "exit status 1"},
	}
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestLogRun(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, m.EnsureDir())

	entry, err := m.LogRun(OpOptimize, false, testResults())
	require.NoError(t, err)

	assert.Contains(t, entry.ID, "optimize-")
	assert.Equal(t, OpOptimize, entry.Operation)
	assert.False(t, entry.DryRun)
	assert.Len(t, entry.Files, 3)
	assert.Equal(t, int64(3), entry.Summary.TotalFiles)
	assert.Equal(t, int64(1), entry.Summary.Optimized)
	assert.Equal(t, int64(1), entry.Summary.Failed)
	assert.Equal(t, 12*types.MiB, entry.Summary.BytesBefore)
	assert.Equal(t, 6*types.MiB, entry.Summary.BytesAfter)

	// Entry persists as a JSON file.
	_, err = os.Stat(filepath.Join(dir, entry.ID+".json"))
	assert.NoError(t, err)
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, m.EnsureDir())

	first, err := m.LogRun(OpOptimize, false, testResults())
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := m.LogRun(OpWatch, false, testResults())
	require.NoError(t, err)

	entries, err := m.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)

	limited, err := m.List(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestList_MissingDir(t *testing.T) {
	m, err := New(filepath.Join(t.TempDir(), "never-created"))
	require.NoError(t, err)

	entries, err := m.List(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGet(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, m.EnsureDir())

	entry, err := m.LogRun(OpOptimize, true, testResults())
	require.NoError(t, err)

	got, err := m.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.True(t, got.DryRun)
	assert.Equal(t, "/docs/a.pdf", got.Files[0].Path)

	_, err = m.Get("missing")
	assert.Error(t, err)

	_, err = m.Get("")
	assert.Error(t, err)
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	m, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, m.EnsureDir())

	old, err := m.LogRun(OpOptimize, false, testResults())
	require.NoError(t, err)
	recent, err := m.LogRun(OpOptimize, false, testResults())
	require.NoError(t, err)

	// Age the first entry past the retention cutoff.
	oldPath := filepath.Join(dir, old.ID+".json")
	past := time.Now().AddDate(0, 0, -60)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	require.NoError(t, m.Cleanup(30))

	entries, err := m.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, recent.ID, entries[0].ID)
}
