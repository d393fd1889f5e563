package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// PlainFormatter formats output as simple tab-separated text.
// It produces plain output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if r.Verbose {
		if _, err := tw.Write([]byte("BEFORE\tAFTER\tCHANGE\tSTATUS\tPATH\n")); err != nil {
			return err
		}

		for _, file := range r.Files {
			line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
				file.OriginalHuman,
				file.OptimizedHuman,
				changeColumn(file),
				file.Status,
				file.Path,
			)
			if _, err := tw.Write([]byte(line)); err != nil {
				return err
			}
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}

	if r.Interrupted {
		w.WriteString("interrupted\n")
	}

	s := r.Stats
	fmt.Fprintf(w, "%d files: %d optimized, %d no-gain, %d skipped, %d failed\n",
		s.Targets, s.Optimized, s.NoGain, s.Skipped, s.Failed)
	fmt.Fprintf(w, "%s -> %s, saved %s (%.2f%%)\n",
		formatBytes(s.BytesBefore), formatBytes(s.BytesAfter),
		formatBytes(s.Saved), s.Reduction)

	if r.DryRun {
		w.WriteString("dry run: no files were modified\n")
	}

	return nil
}

// changeColumn formats the per-file reduction, or the error for
// failed files.
func changeColumn(file FileResult) string {
	switch file.Status {
	case types.StatusFailed, types.StatusSkipped:
		return "-"
	default:
		return fmt.Sprintf("-%.2f%%", file.Reduction)
	}
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
