package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file with n bytes of content.
func writeFile(t *testing.T, path string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, n), 0o644))
}

func TestResolve_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	writeFile(t, path, 100)

	targets, warnings, err := Resolve([]string{path}, Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, targets, 1)
	assert.Equal(t, path, targets[0].Path)
	assert.Equal(t, int64(100), targets[0].Size)
}

func TestResolve_CaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SCAN.PDF")
	writeFile(t, path, 10)

	targets, _, err := Resolve([]string{path}, Options{})
	require.NoError(t, err)
	require.Len(t, targets, 1)
}

func TestResolve_NonPDFWarns(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "a.pdf")
	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, pdf, 10)
	writeFile(t, txt, 10)

	targets, warnings, err := Resolve([]string{txt, pdf}, Options{})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, pdf, targets[0].Path)
	require.Len(t, warnings, 1)
	assert.Equal(t, txt, warnings[0].Path)
	assert.Equal(t, "not a PDF file", warnings[0].Reason)
}

func TestResolve_MissingPathWarns(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "a.pdf")
	writeFile(t, pdf, 10)

	targets, warnings, err := Resolve([]string{filepath.Join(dir, "gone.pdf"), pdf}, Options{})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, "path does not exist", warnings[0].Reason)
}

func TestResolve_AllInvalid(t *testing.T) {
	targets, warnings, err := Resolve([]string{"/nonexistent/a.pdf", "/nonexistent/b.pdf"}, Options{})
	assert.ErrorIs(t, err, ErrNoTargets)
	assert.Nil(t, targets)
	assert.Len(t, warnings, 2)
}

func TestResolve_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.pdf"), 10)
	writeFile(t, filepath.Join(dir, "a.pdf"), 10)
	writeFile(t, filepath.Join(dir, "notes.txt"), 10)
	writeFile(t, filepath.Join(dir, ".hidden.pdf"), 10)
	writeFile(t, filepath.Join(dir, "sub", "nested.pdf"), 10)

	targets, warnings, err := Resolve([]string{dir}, Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Non-recursive: top-level PDFs only, sorted, dot files excluded.
	require.Len(t, targets, 2)
	assert.Equal(t, filepath.Join(dir, "a.pdf"), targets[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.pdf"), targets[1].Path)
}

func TestResolve_DirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.pdf"), 10)
	writeFile(t, filepath.Join(dir, "sub", "nested.pdf"), 10)
	writeFile(t, filepath.Join(dir, "sub", "deep", "leaf.pdf"), 10)
	writeFile(t, filepath.Join(dir, "sub", ".tmp.pdf"), 10)

	targets, _, err := Resolve([]string{dir}, Options{Recursive: true})
	require.NoError(t, err)

	var paths []string
	for _, tgt := range targets {
		paths = append(paths, tgt.Path)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "top.pdf"),
		filepath.Join(dir, "sub", "nested.pdf"),
		filepath.Join(dir, "sub", "deep", "leaf.pdf"),
	}, paths)
}

func TestResolve_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pdf")
	writeFile(t, path, 10)

	// Same file named explicitly and via its directory.
	targets, _, err := Resolve([]string{path, dir, path}, Options{})
	require.NoError(t, err)
	assert.Len(t, targets, 1)
}

func TestResolve_MinSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.pdf"), 10)
	writeFile(t, filepath.Join(dir, "big.pdf"), 5000)

	targets, _, err := Resolve([]string{dir}, Options{MinSize: 1000})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, filepath.Join(dir, "big.pdf"), targets[0].Path)
}

func TestResolve_PreservesArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "z.pdf")
	second := filepath.Join(dir, "a.pdf")
	writeFile(t, first, 10)
	writeFile(t, second, 10)

	targets, _, err := Resolve([]string{first, second}, Options{})
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, first, targets[0].Path)
	assert.Equal(t, second, targets[1].Path)
}
