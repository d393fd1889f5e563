package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector gathers callback paths under a lock.
type collector struct {
	mu    sync.Mutex
	paths []string
}

func (c *collector) add(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func (c *collector) waitFor(t *testing.T, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, p := range c.snapshot() {
			if p == want {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("path %s never reported; got %v", want, c.snapshot())
}

func startWatcher(t *testing.T, dir string) (*Watcher, *collector) {
	t.Helper()

	w, err := New(100 * time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	c := &collector{}
	go w.Run(ctx, c.add)

	t.Cleanup(func() {
		cancel()
		_ = w.Close()
	})
	return w, c
}

func TestWatcher_ReportsNewPDF(t *testing.T) {
	dir := t.TempDir()
	_, c := startWatcher(t, dir)

	path := filepath.Join(dir, "new.pdf")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	c.waitFor(t, path, 3*time.Second)
}

func TestWatcher_IgnoresNonPDFAndDotFiles(t *testing.T) {
	dir := t.TempDir()
	_, c := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".squeeze-tmp.pdf"), []byte("x"), 0o644))

	pdf := filepath.Join(dir, "real.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("x"), 0o644))
	c.waitFor(t, pdf, 3*time.Second)

	assert.Equal(t, []string{pdf}, c.snapshot())
}

func TestWatcher_DebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	_, c := startWatcher(t, dir)

	path := filepath.Join(dir, "doc.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)

	// A burst of writes within the debounce window collapses to one
	// callback.
	for i := 0; i < 5; i++ {
		_, err = f.Write(make([]byte, 10))
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	c.waitFor(t, path, 3*time.Second)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, []string{path}, c.snapshot())
}

func TestWatcher_PicksUpNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	_, c := startWatcher(t, dir)

	sub := filepath.Join(dir, "incoming")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// Give the watcher a moment to add the new directory.
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(sub, "dropped.pdf")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	c.waitFor(t, path, 3*time.Second)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := New(0)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
