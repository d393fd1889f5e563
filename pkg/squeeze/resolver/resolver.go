// Package resolver expands command-line paths into PDF optimization
// targets. Files must carry the .pdf extension; directories are
// expanded to the PDF files they contain, optionally recursing into
// subdirectories.
package resolver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/squeeze/pkg/squeeze/logging"
	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// pdfExt is the recognized target extension (matched case-insensitively).
const pdfExt = ".pdf"

// ErrNoTargets is returned when no valid PDF target remains after
// resolution. Invalid paths are skipped with a warning, but an empty
// target set aborts the run.
var ErrNoTargets = errors.New("no PDF targets resolved")

// Options configures path resolution.
type Options struct {
	// Recursive expands directories into subdirectories as well.
	Recursive bool

	// MinSize excludes files smaller than this many bytes. Zero
	// includes everything.
	MinSize int64
}

// Warning records a path that was skipped during resolution.
type Warning struct {
	Path   string
	Reason string
}

// Resolve expands the given paths into a deduplicated target sequence.
// Paths that do not exist or do not reference a PDF produce a Warning
// and are skipped. Targets are returned in a stable order: arguments in
// the order given, directory contents sorted by path.
func Resolve(paths []string, opts Options) ([]types.Target, []Warning, error) {
	logger := logging.Get("resolver")

	var targets []types.Target
	var warnings []Warning
	seen := make(map[string]bool)

	add := func(path string, size int64, info os.FileInfo) {
		if seen[path] {
			return
		}
		seen[path] = true
		targets = append(targets, types.Target{
			Path:    path,
			Size:    size,
			ModTime: info.ModTime(),
		})
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			warnings = append(warnings, Warning{Path: p, Reason: "cannot resolve path"})
			continue
		}

		info, err := os.Stat(abs)
		if err != nil {
			warnings = append(warnings, Warning{Path: p, Reason: "path does not exist"})
			continue
		}

		if info.IsDir() {
			entries, dirWarnings, err := expandDir(abs, opts)
			if err != nil {
				warnings = append(warnings, Warning{Path: p, Reason: err.Error()})
				continue
			}
			warnings = append(warnings, dirWarnings...)
			for _, e := range entries {
				add(e.path, e.info.Size(), e.info)
			}
			continue
		}

		if !isPDF(abs) {
			warnings = append(warnings, Warning{Path: p, Reason: "not a PDF file"})
			continue
		}

		if opts.MinSize > 0 && info.Size() < opts.MinSize {
			logger.Debug("below minimum size, skipping", "path", abs, "size", info.Size())
			continue
		}

		add(abs, info.Size(), info)
	}

	if len(targets) == 0 {
		return nil, warnings, ErrNoTargets
	}

	logger.Debug("resolved targets", "count", len(targets), "warnings", len(warnings))
	return targets, warnings, nil
}

// dirEntry pairs a discovered path with its file info.
type dirEntry struct {
	path string
	info os.FileInfo
}

// expandDir lists the PDF files contained in dir. Dot-prefixed names
// are skipped so in-flight temporary outputs are never picked up.
func expandDir(dir string, opts Options) ([]dirEntry, []Warning, error) {
	if opts.Recursive {
		return walkDir(dir, opts)
	}

	listing, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var entries []dirEntry
	var warnings []Warning
	for _, e := range listing {
		if e.IsDir() || !includeName(e.Name()) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			warnings = append(warnings, Warning{Path: filepath.Join(dir, e.Name()), Reason: err.Error()})
			continue
		}
		if opts.MinSize > 0 && info.Size() < opts.MinSize {
			continue
		}
		entries = append(entries, dirEntry{path: filepath.Join(dir, e.Name()), info: info})
	}

	sortEntries(entries)
	return entries, warnings, nil
}

// walkDir recursively collects PDF files under dir using fastwalk.
// The walk is parallel, so collection is guarded and the result sorted
// for stable output.
func walkDir(dir string, opts Options) ([]dirEntry, []Warning, error) {
	var mu sync.Mutex
	var entries []dirEntry
	var warnings []Warning

	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}

	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			mu.Lock()
			warnings = append(warnings, Warning{Path: path, Reason: err.Error()})
			mu.Unlock()
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() || !includeName(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			mu.Lock()
			warnings = append(warnings, Warning{Path: path, Reason: err.Error()})
			mu.Unlock()
			return nil
		}
		if opts.MinSize > 0 && info.Size() < opts.MinSize {
			return nil
		}

		mu.Lock()
		entries = append(entries, dirEntry{path: path, info: info})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, warnings, err
	}

	sortEntries(entries)
	return entries, warnings, nil
}

// includeName reports whether a directory entry name is a candidate
// PDF. Dot-prefixed names are excluded.
func includeName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return isPDF(name)
}

// isPDF matches the .pdf extension case-insensitively.
func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), pdfExt)
}

// sortEntries orders directory expansions by path for stable output.
func sortEntries(entries []dirEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].path < entries[j].path
	})
}
