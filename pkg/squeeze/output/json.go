package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Files []jsonFile `json:"files"`
	Stats jsonStats  `json:"stats"`
	Meta  jsonMeta   `json:"meta"`
}

// jsonFile represents a file in JSON output.
type jsonFile struct {
	Path           string       `json:"path"`
	Name           string       `json:"name,omitempty"`
	OriginalSize   int64        `json:"original_size"`
	OptimizedSize  int64        `json:"optimized_size"`
	OriginalHuman  string       `json:"original_human"`
	OptimizedHuman string       `json:"optimized_human"`
	Reduction      float64      `json:"reduction"`
	Status         types.Status `json:"status"`
	Error          string       `json:"error,omitempty"`
	Duration       string       `json:"duration,omitempty"`
}

// jsonStats represents run statistics in JSON output.
type jsonStats struct {
	Targets     int     `json:"targets"`
	Optimized   int     `json:"optimized"`
	NoGain      int     `json:"no_gain"`
	Skipped     int     `json:"skipped"`
	Failed      int     `json:"failed"`
	BytesBefore int64   `json:"bytes_before"`
	BytesAfter  int64   `json:"bytes_after"`
	Saved       int64   `json:"saved"`
	Reduction   float64 `json:"reduction"`
	Duration    string  `json:"duration"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Sources     []string `json:"sources,omitempty"`
	DryRun      bool     `json:"dry_run"`
	Warnings    []string `json:"warnings,omitempty"`
	Interrupted bool     `json:"interrupted"`
}

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with files, stats, and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Report) error {
	output := f.buildOutput(r)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildOutput converts Report to the JSON output structure.
func (f *JSONFormatter) buildOutput(r *Report) jsonOutput {
	files := make([]jsonFile, len(r.Files))
	for i, file := range r.Files {
		files[i] = buildJSONFile(file)
	}

	stats := jsonStats{
		Targets:     r.Stats.Targets,
		Optimized:   r.Stats.Optimized,
		NoGain:      r.Stats.NoGain,
		Skipped:     r.Stats.Skipped,
		Failed:      r.Stats.Failed,
		BytesBefore: r.Stats.BytesBefore,
		BytesAfter:  r.Stats.BytesAfter,
		Saved:       r.Stats.Saved,
		Reduction:   r.Stats.Reduction,
		Duration:    formatDurationString(r.Stats.Duration),
	}

	meta := jsonMeta{
		Sources:     r.Sources,
		DryRun:      r.DryRun,
		Warnings:    r.Warnings,
		Interrupted: r.Interrupted,
	}

	return jsonOutput{
		Files: files,
		Stats: stats,
		Meta:  meta,
	}
}

// buildJSONFile converts a FileResult to its JSON representation.
func buildJSONFile(file FileResult) jsonFile {
	return jsonFile{
		Path:           file.Path,
		Name:           file.Name,
		OriginalSize:   file.OriginalSize,
		OptimizedSize:  file.OptimizedSize,
		OriginalHuman:  file.OriginalHuman,
		OptimizedHuman: file.OptimizedHuman,
		Reduction:      file.Reduction,
		Status:         file.Status,
		Error:          file.Error,
		Duration:       formatDurationString(file.Duration),
	}
}

// formatDurationString formats a duration as a string for JSON output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON (one object per line).
// Each file is written as a compact JSON object on its own line.
// This format is suitable for streaming processing with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Report) error {
	for _, file := range r.Files {
		data, err := json.Marshal(buildJSONFile(file))
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
