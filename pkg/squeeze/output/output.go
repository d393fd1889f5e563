// Package output provides formatters for displaying optimization run
// results in various output formats (pretty, plain, json, jsonl).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// FileResult contains the per-file outcome enriched with computed
// fields for formatting.
type FileResult struct {
	// Path is the absolute path to the PDF file.
	Path string `json:"path"`

	// Name is the base name of the file.
	Name string `json:"name"`

	// OriginalSize is the size in bytes before optimization.
	OriginalSize int64 `json:"original_size"`

	// OptimizedSize is the size in bytes after optimization.
	OptimizedSize int64 `json:"optimized_size"`

	// OriginalHuman is the human-readable original size (e.g. "1.5 MiB").
	OriginalHuman string `json:"original_human"`

	// OptimizedHuman is the human-readable optimized size.
	OptimizedHuman string `json:"optimized_human"`

	// Reduction is the percentage size reduction for this file.
	Reduction float64 `json:"reduction"`

	// Status is the per-file outcome (optimized, no-gain, skipped, failed).
	Status types.Status `json:"status"`

	// Error holds the failure diagnostic when Status is failed.
	Error string `json:"error,omitempty"`

	// Duration is how long the tool invocation took.
	Duration time.Duration `json:"duration"`
}

// RunStats contains statistics about an optimization run.
type RunStats struct {
	// Targets is the total number of resolved targets.
	Targets int `json:"targets"`

	// Optimized is the number of files replaced with a smaller version.
	Optimized int `json:"optimized"`

	// NoGain is the number of files already at their optimal size.
	NoGain int `json:"no_gain"`

	// Skipped is the number of files skipped via the cache.
	Skipped int `json:"skipped"`

	// Failed is the number of files where the tool failed.
	Failed int `json:"failed"`

	// BytesBefore is the total size before optimization.
	BytesBefore int64 `json:"bytes_before"`

	// BytesAfter is the total size after optimization.
	BytesAfter int64 `json:"bytes_after"`

	// Saved is the total number of bytes reclaimed.
	Saved int64 `json:"saved"`

	// Reduction is the aggregate percentage reduction.
	Reduction float64 `json:"reduction"`

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration `json:"duration"`
}

// Report contains the complete output data for formatting.
type Report struct {
	// Files contains the per-file results in input order.
	Files []FileResult `json:"files"`

	// Stats contains run statistics.
	Stats RunStats `json:"stats"`

	// Sources are the paths given on the command line.
	Sources []string `json:"sources"`

	// DryRun indicates no files were actually replaced.
	DryRun bool `json:"dry_run"`

	// Verbose enables per-file lines in human-readable formats.
	Verbose bool `json:"verbose"`

	// Warnings contains paths skipped during resolution.
	Warnings []string `json:"warnings,omitempty"`

	// Interrupted indicates the run was interrupted by the user.
	Interrupted bool `json:"interrupted"`
}

// BuildReport assembles a Report from raw run data.
func BuildReport(results []types.Result, summary types.Summary) *Report {
	files := make([]FileResult, len(results))
	for i, r := range results {
		files[i] = FileResult{
			Path:           r.Path,
			Name:           filepath.Base(r.Path),
			OriginalSize:   r.OriginalSize,
			OptimizedSize:  r.OptimizedSize,
			OriginalHuman:  types.FormatSize(r.OriginalSize),
			OptimizedHuman: types.FormatSize(r.OptimizedSize),
			Reduction:      r.Reduction(),
			Status:         r.Status,
			Error:          r.Error,
			Duration:       r.Duration,
		}
	}

	return &Report{
		Files: files,
		Stats: RunStats{
			Targets:     summary.Targets,
			Optimized:   summary.Optimized,
			NoGain:      summary.NoGain,
			Skipped:     summary.Skipped,
			Failed:      summary.Failed,
			BytesBefore: summary.BytesBefore,
			BytesAfter:  summary.BytesAfter,
			Saved:       summary.Saved(),
			Reduction:   summary.Reduction(),
			Duration:    summary.Elapsed,
		},
	}
}

// formatBytes renders a byte count using binary units.
func formatBytes(n int64) string {
	return types.FormatSize(n)
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
