// Package types provides core data types for the squeeze PDF optimizer.
// It includes structures for optimization targets, per-file results, and
// run summaries, along with utility functions for parsing and formatting
// file sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Target is a single PDF file slated for optimization.
type Target struct {
	// Path is the absolute path to the PDF file.
	Path string `json:"path"`

	// Size is the file size in bytes at resolution time.
	Size int64 `json:"size"`

	// ModTime is the last modification time at resolution time.
	ModTime time.Time `json:"mod_time"`
}

// HumanSize returns the target size formatted as a human-readable string.
func (t *Target) HumanSize() string {
	return FormatSize(t.Size)
}

// Status describes the outcome of optimizing a single target.
type Status string

const (
	// StatusOptimized means the tool produced a smaller file and the
	// original was replaced (or would be replaced, in a dry run).
	StatusOptimized Status = "optimized"

	// StatusNoGain means the tool succeeded but the output was not
	// smaller; the original was kept unchanged.
	StatusNoGain Status = "no-gain"

	// StatusSkipped means the target was not processed, typically
	// because the cache shows it is unchanged since its last run.
	StatusSkipped Status = "skipped"

	// StatusFailed means the tool exited non-zero, timed out, or
	// produced no output; the original was left untouched.
	StatusFailed Status = "failed"
)

// Result records the outcome of one optimization attempt.
// It is immutable after creation.
type Result struct {
	// Path is the absolute path of the target file.
	Path string `json:"path"`

	// OriginalSize is the file size in bytes before optimization.
	OriginalSize int64 `json:"original_size"`

	// OptimizedSize is the file size in bytes after the run. For
	// no-gain and skipped targets it equals OriginalSize. In a dry run
	// it is the measured candidate size; the file on disk is unchanged.
	OptimizedSize int64 `json:"optimized_size"`

	// Status is the per-target outcome.
	Status Status `json:"status"`

	// Error holds the captured diagnostic text when Status is failed.
	Error string `json:"error,omitempty"`

	// Duration is how long the external tool invocation took.
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the external tool completed without error.
// Skipped targets count as succeeded.
func (r *Result) Succeeded() bool {
	return r.Status != StatusFailed
}

// Saved returns the number of bytes reclaimed for this target.
func (r *Result) Saved() int64 {
	if r.OptimizedSize >= r.OriginalSize {
		return 0
	}
	return r.OriginalSize - r.OptimizedSize
}

// Reduction returns the percentage size reduction for this target,
// (1 - optimized/original) * 100. Zero when the original size is zero.
func (r *Result) Reduction() float64 {
	if r.OriginalSize <= 0 {
		return 0
	}
	return (1 - float64(r.OptimizedSize)/float64(r.OriginalSize)) * 100
}

// Summary aggregates the results of one batch run.
// It is derived from the result sequence, never mutated independently.
type Summary struct {
	// Targets is the total number of resolved targets.
	Targets int `json:"targets"`

	// Optimized is the number of targets replaced with a smaller file.
	Optimized int `json:"optimized"`

	// NoGain is the number of targets where the output was not smaller.
	NoGain int `json:"no_gain"`

	// Skipped is the number of targets skipped via the cache.
	Skipped int `json:"skipped"`

	// Failed is the number of targets where the tool failed.
	Failed int `json:"failed"`

	// BytesBefore is the total original size of all processed targets
	// where the tool succeeded (optimized plus no-gain).
	BytesBefore int64 `json:"bytes_before"`

	// BytesAfter is the total resulting size of the same targets.
	BytesAfter int64 `json:"bytes_after"`

	// Elapsed is the wall-clock duration of the whole run.
	Elapsed time.Duration `json:"elapsed"`
}

// Saved returns the total number of bytes reclaimed across the run.
func (s *Summary) Saved() int64 {
	if s.BytesAfter >= s.BytesBefore {
		return 0
	}
	return s.BytesBefore - s.BytesAfter
}

// Reduction returns the aggregate percentage reduction across all
// successfully processed targets: (1 - sum(after)/sum(before)) * 100.
func (s *Summary) Reduction() float64 {
	if s.BytesBefore <= 0 {
		return 0
	}
	return (1 - float64(s.BytesAfter)/float64(s.BytesBefore)) * 100
}

// Summarize computes a Summary from an ordered result sequence.
// Skipped targets are counted but excluded from the byte totals so the
// aggregate reduction reflects only the work done in this run.
func Summarize(results []Result, elapsed time.Duration) Summary {
	s := Summary{Targets: len(results), Elapsed: elapsed}

	for i := range results {
		r := &results[i]
		switch r.Status {
		case StatusOptimized:
			s.Optimized++
		case StatusNoGain:
			s.NoGain++
		case StatusSkipped:
			s.Skipped++
			continue
		case StatusFailed:
			s.Failed++
			continue
		}
		s.BytesBefore += r.OriginalSize
		s.BytesAfter += r.OptimizedSize
	}

	return s
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in
// bytes. It supports plain bytes ("1024"), byte suffixes ("512B"), and
// K/M/G/T units with optional B or iB suffixes ("100K", "50MiB", "2GB").
// Decimal values are supported and truncated to the nearest byte.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
