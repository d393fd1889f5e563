package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 1024})
	require.NoError(t, err)
	defer w.Close()

	n, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestRotatingWriter_RotatesAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 32})
	require.NoError(t, err)
	defer w.Close()

	line := strings.Repeat("x", 20) + "\n"
	_, err = w.Write([]byte(line))
	require.NoError(t, err)

	// Second write crosses MaxSize and forces a rotation.
	_, err = w.Write([]byte(line))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var rotated int
	for _, e := range entries {
		if e.Name() != "test.log" && strings.HasPrefix(e.Name(), "test.") {
			rotated++
		}
	}
	assert.Equal(t, 1, rotated, "expected one rotated log file")
}

func TestRotatingWriter_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.log")

	w, err := NewRotatingWriter(path, RotationConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{input: "debug", want: LevelDebug},
		{input: "info", want: LevelInfo},
		{input: "warn", want: LevelWarn},
		{input: "warning", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "ERROR", want: LevelError},
		{input: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGet_BeforeInit_Silent(t *testing.T) {
	// Loggers created before Init must not panic and must be reusable.
	logger := Get("test-component")
	require.NotNil(t, logger)
	logger.Info("discarded message")
	assert.Same(t, logger, Get("test-component"))
}
