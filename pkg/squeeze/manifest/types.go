// Package manifest provides run history logging for PDF optimization.
package manifest

import (
	"time"

	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// OperationType represents the type of operation.
type OperationType string

const (
	// OpOptimize represents a batch optimization run.
	OpOptimize OperationType = "optimize"
	// OpWatch represents an optimization triggered by watch mode.
	OpWatch OperationType = "watch"
)

// Entry represents a single manifest entry.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	DryRun    bool          `json:"dry_run,omitempty"`
	Files     []FileRecord  `json:"files"`
	Summary   Summary       `json:"summary"`
}

// FileRecord represents one optimized file in the manifest.
type FileRecord struct {
	Path          string       `json:"path"`
	OriginalSize  int64        `json:"original_size"`
	OptimizedSize int64        `json:"optimized_size"`
	Status        types.Status `json:"status"`
	Error         string       `json:"error,omitempty"`
}

// Summary contains run summary.
type Summary struct {
	TotalFiles  int64 `json:"total_files"`
	Optimized   int64 `json:"optimized"`
	Failed      int64 `json:"failed"`
	BytesBefore int64 `json:"bytes_before"`
	BytesAfter  int64 `json:"bytes_after"`
}

// RecordsFromResults converts per-file results to manifest records.
func RecordsFromResults(results []types.Result) []FileRecord {
	records := make([]FileRecord, len(results))
	for i, r := range results {
		records[i] = FileRecord{
			Path:          r.Path,
			OriginalSize:  r.OriginalSize,
			OptimizedSize: r.OptimizedSize,
			Status:        r.Status,
			Error:         r.Error,
		}
	}
	return records
}
