package gs

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// writeStub installs an executable shell script named gs in dir and
// returns its path. The script receives the real Ghostscript argument
// list; stubs extract the -sOutputFile= argument to produce output.
func writeStub(t *testing.T, dir, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	path := filepath.Join(dir, "gs")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

// extractOut is shared stub preamble that pulls the output path out of
// the -sOutputFile= argument.
const extractOut = `out=""
for a in "$@"; do
  case "$a" in
    -sOutputFile=*) out="${a#-sOutputFile=}" ;;
  esac
done
`

func makePDF(t *testing.T, dir, name string, size int) types.Target {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return types.Target{Path: path, Size: info.Size(), ModTime: info.ModTime()}
}

func TestFind_ExplicitBinary(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "exit 0\n")

	path, err := Find(stub)
	require.NoError(t, err)
	assert.Equal(t, stub, path)
}

func TestFind_ProbesPath(t *testing.T) {
	dir := t.TempDir()
	writeStub(t, dir, "exit 0\n")
	t.Setenv("PATH", dir)

	path, err := Find("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gs"), path)
}

func TestFind_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := Find("")
	assert.ErrorIs(t, err, ErrToolNotFound)

	_, err = Find("no-such-binary")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestOptimize_ReplacesWhenSmaller(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, extractOut+`head -c 4000 /dev/zero > "$out"
exit 0
`)
	target := makePDF(t, dir, "doc.pdf", 10000)

	tool := New(Config{Binary: stub})
	res := tool.Optimize(context.Background(), target)

	assert.Equal(t, types.StatusOptimized, res.Status)
	assert.Equal(t, int64(10000), res.OriginalSize)
	assert.Equal(t, int64(4000), res.OptimizedSize)
	assert.InDelta(t, 60.0, res.Reduction(), 0.001)

	info, err := os.Stat(target.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), info.Size())
}

func TestOptimize_KeepsOriginalOnNoGain(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, extractOut+`head -c 8000 /dev/zero > "$out"
exit 0
`)
	target := makePDF(t, dir, "doc.pdf", 5000)

	tool := New(Config{Binary: stub})
	res := tool.Optimize(context.Background(), target)

	assert.Equal(t, types.StatusNoGain, res.Status)
	assert.Equal(t, int64(5000), res.OptimizedSize)
	assert.Zero(t, res.Saved())

	info, err := os.Stat(target.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), info.Size(), "original must be untouched")
}

func TestOptimize_SubprocessFailure(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "echo 'GPL Ghostscript: Unrecoverable error' >&2\nexit 1\n")
	target := makePDF(t, dir, "doc.pdf", 5000)

	tool := New(Config{Binary: stub})
	res := tool.Optimize(context.Background(), target)

	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Contains(t, res.Error, "Unrecoverable error")
	assert.False(t, res.Succeeded())

	info, err := os.Stat(target.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), info.Size(), "original must survive failure")
}

func TestOptimize_Timeout(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "sleep 10\n")
	target := makePDF(t, dir, "doc.pdf", 5000)

	tool := New(Config{Binary: stub, Timeout: 100 * time.Millisecond})

	start := time.Now()
	res := tool.Optimize(context.Background(), target)

	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Contains(t, res.Error, "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOptimize_DryRun(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, extractOut+`head -c 2000 /dev/zero > "$out"
exit 0
`)
	target := makePDF(t, dir, "doc.pdf", 10000)

	tool := New(Config{Binary: stub, DryRun: true})
	res := tool.Optimize(context.Background(), target)

	assert.Equal(t, types.StatusOptimized, res.Status)
	assert.Equal(t, int64(2000), res.OptimizedSize)

	info, err := os.Stat(target.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), info.Size(), "dry run must not replace the file")
}

func TestOptimize_CleansUpTempFile(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, extractOut+`head -c 8000 /dev/zero > "$out"
exit 0
`)
	target := makePDF(t, dir, "doc.pdf", 5000)

	tool := New(Config{Binary: stub})
	tool.Optimize(context.Background(), target)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".squeeze-", "temp file must be removed")
	}
}
