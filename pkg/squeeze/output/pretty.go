package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	if r.Verbose && len(r.Files) > 0 {
		w.WriteString(f.formatTable(r))
	}

	if len(r.Warnings) > 0 {
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	if r.Interrupted {
		w.WriteString(WarningStyle.Bold(true).Render("Run interrupted by user"))
		w.WriteString("\n")
	}

	w.WriteString(f.formatSummary(r))
	w.WriteString("\n")

	return nil
}

// formatTable builds the per-file table with size, change, and path
// columns.
func (f *PrettyFormatter) formatTable(r *Report) string {
	var sb strings.Builder

	// Calculate size column widths for alignment
	beforeWidth, afterWidth := 8, 8
	for _, file := range r.Files {
		if len(file.OriginalHuman) > beforeWidth {
			beforeWidth = len(file.OriginalHuman)
		}
		if len(file.OptimizedHuman) > afterWidth {
			afterWidth = len(file.OptimizedHuman)
		}
	}

	for _, file := range r.Files {
		sb.WriteString("  ")
		sb.WriteString(f.formatRow(file, beforeWidth, afterWidth))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow renders one file line according to its status.
func (f *PrettyFormatter) formatRow(file FileResult, beforeWidth, afterWidth int) string {
	switch file.Status {
	case types.StatusFailed:
		return fmt.Sprintf("%s  %s  %s",
			ErrorStyle.Render(padLeft("failed", beforeWidth)),
			PathStyle.Render(file.Path),
			MutedStyle.Render(file.Error),
		)
	case types.StatusSkipped:
		return fmt.Sprintf("%s  %s  %s",
			MutedStyle.Render(padLeft("skipped", beforeWidth)),
			PathStyle.Render(file.Path),
			MutedStyle.Render("unchanged since last run"),
		)
	case types.StatusNoGain:
		return fmt.Sprintf("%s  %s  %s",
			SizeStyle.Render(padLeft(file.OriginalHuman, beforeWidth)),
			PathStyle.Render(file.Path),
			MutedStyle.Render("already optimal"),
		)
	default:
		change := SuccessStyle.Render(fmt.Sprintf("-%.2f%%", file.Reduction))
		return fmt.Sprintf("%s %s %s  %s  %s",
			SizeStyle.Render(padLeft(file.OriginalHuman, beforeWidth)),
			MutedStyle.Render("->"),
			SizeStyle.Render(padLeft(file.OptimizedHuman, afterWidth)),
			change,
			PathStyle.Render(file.Path),
		)
	}
}

// formatSummary builds the summary box with run totals.
func (f *PrettyFormatter) formatSummary(r *Report) string {
	s := r.Stats
	var lines []string

	countsLabel := LabelStyle.Render("Files:")
	counts := ValueStyle.Render(fmt.Sprintf(
		"%d total, %d optimized, %d no-gain, %d skipped, %d failed",
		s.Targets, s.Optimized, s.NoGain, s.Skipped, s.Failed))
	lines = append(lines, fmt.Sprintf("%s %s", countsLabel, counts))

	sizesLabel := LabelStyle.Render("Size:")
	sizes := fmt.Sprintf("%s %s %s",
		SizeStyle.Render(formatBytes(s.BytesBefore)),
		MutedStyle.Render("->"),
		SizeStyle.Render(formatBytes(s.BytesAfter)))
	saved := SuccessStyle.Render(fmt.Sprintf("saved %s (%.2f%%)",
		formatBytes(s.Saved), s.Reduction))
	lines = append(lines, fmt.Sprintf("%s %s  %s", sizesLabel, sizes, saved))

	elapsedLabel := LabelStyle.Render("Elapsed:")
	elapsedValue := ValueStyle.Render(formatDuration(s.Duration))
	lines = append(lines, fmt.Sprintf("%s %s", elapsedLabel, elapsedValue))

	if r.DryRun {
		lines = append(lines, WarningStyle.Render("Dry run: no files were modified"))
	}

	return SummaryBox.Render(strings.Join(lines, "\n"))
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	titleStyle := WarningStyle.Bold(true)
	sb.WriteString(titleStyle.Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
