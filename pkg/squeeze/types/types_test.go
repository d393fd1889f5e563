package types

import (
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain bytes", input: "1024", want: 1024, wantErr: false},
		{name: "zero bytes", input: "0", want: 0, wantErr: false},
		{name: "bytes with B suffix", input: "512B", want: 512, wantErr: false},

		{name: "kilobytes uppercase", input: "100K", want: 100 * 1024, wantErr: false},
		{name: "kilobytes with iB", input: "100KiB", want: 100 * 1024, wantErr: false},
		{name: "megabytes", input: "50M", want: 50 * 1024 * 1024, wantErr: false},
		{name: "megabytes with B", input: "50MB", want: 50 * 1024 * 1024, wantErr: false},
		{name: "gigabytes", input: "2G", want: 2 * 1024 * 1024 * 1024, wantErr: false},
		{name: "terabytes", input: "1T", want: 1024 * 1024 * 1024 * 1024, wantErr: false},

		{name: "leading whitespace", input: "  100M", want: 100 * 1024 * 1024, wantErr: false},
		{name: "trailing whitespace", input: "100M  ", want: 100 * 1024 * 1024, wantErr: false},
		{name: "decimal values truncated", input: "1.5G", want: 1610612736, wantErr: false},

		{name: "empty string", input: "", wantErr: true},
		{name: "only whitespace", input: "   ", wantErr: true},
		{name: "invalid suffix", input: "100X", wantErr: true},
		{name: "negative value", input: "-100M", wantErr: true},
		{name: "letters only", input: "abc", wantErr: true},
		{name: "suffix only", input: "M", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero", bytes: 0, want: "0 B"},
		{name: "bytes", bytes: 500, want: "500 B"},
		{name: "kilobytes", bytes: 1024, want: "1.0 KiB"},
		{name: "megabytes", bytes: 1024 * 1024, want: "1.0 MiB"},
		{name: "mixed size", bytes: 1536 * 1024, want: "1.5 MiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSize(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestResult_Reduction(t *testing.T) {
	tests := []struct {
		name     string
		original int64
		after    int64
		want     float64
	}{
		{name: "sixty percent", original: 10_000_000, after: 4_000_000, want: 60},
		{name: "no gain", original: 1000, after: 1000, want: 0},
		{name: "half", original: 2000, after: 1000, want: 50},
		{name: "zero original", original: 0, after: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{OriginalSize: tt.original, OptimizedSize: tt.after}
			if got := r.Reduction(); got != tt.want {
				t.Errorf("Reduction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResult_Saved(t *testing.T) {
	r := &Result{OriginalSize: 5000, OptimizedSize: 3000}
	if got := r.Saved(); got != 2000 {
		t.Errorf("Saved() = %d, want 2000", got)
	}

	// Larger output never reports negative savings.
	r = &Result{OriginalSize: 5000, OptimizedSize: 8000}
	if got := r.Saved(); got != 0 {
		t.Errorf("Saved() = %d, want 0", got)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Path: "/a.pdf", OriginalSize: 10_000_000, OptimizedSize: 4_000_000, Status: StatusOptimized},
		{Path: "/b.pdf", OriginalSize: 2_000_000, OptimizedSize: 2_000_000, Status: StatusNoGain},
		{Path: "/c.pdf", OriginalSize: 3_000_000, Status: StatusFailed, Error: "exit status 1"},
		{Path: "/d.pdf", OriginalSize: 1_000_000, OptimizedSize: 1_000_000, Status: StatusSkipped},
	}

	s := Summarize(results, 2*time.Second)

	if s.Targets != 4 {
		t.Errorf("Targets = %d, want 4", s.Targets)
	}
	if s.Optimized != 1 || s.NoGain != 1 || s.Failed != 1 || s.Skipped != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 1/1/1/1", s.Optimized, s.NoGain, s.Failed, s.Skipped)
	}

	// Failed and skipped targets stay out of the byte totals.
	if s.BytesBefore != 12_000_000 {
		t.Errorf("BytesBefore = %d, want 12000000", s.BytesBefore)
	}
	if s.BytesAfter != 6_000_000 {
		t.Errorf("BytesAfter = %d, want 6000000", s.BytesAfter)
	}
	if s.Saved() != 6_000_000 {
		t.Errorf("Saved() = %d, want 6000000", s.Saved())
	}
	if s.Reduction() != 50 {
		t.Errorf("Reduction() = %v, want 50", s.Reduction())
	}
	if s.Elapsed != 2*time.Second {
		t.Errorf("Elapsed = %v, want 2s", s.Elapsed)
	}
}

func TestSummary_Reduction_Empty(t *testing.T) {
	s := Summarize(nil, 0)
	if s.Reduction() != 0 {
		t.Errorf("Reduction() on empty summary = %v, want 0", s.Reduction())
	}
}
