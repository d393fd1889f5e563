package main

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/squeeze/pkg/squeeze/config"
	"github.com/jamesainslie/squeeze/pkg/squeeze/manifest"
	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View optimization history",
	Long: `View the history of optimization runs.

The manifest stores a record of every run performed by squeeze,
including which files were optimized and how much space was saved.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific run",
	Long:  `Display detailed information about a specific run by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// runHistory lists recent runs.
func runHistory(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'squeeze <pdf-or-directory>' to optimize PDFs.")
		return nil
	}

	// Print header
	fmt.Printf("\n%-44s  %-8s  %-6s  %-12s  %s\n", "ID", "TYPE", "FILES", "SAVED", "FAILED")
	fmt.Println(strings.Repeat("-", 86))

	for _, entry := range entries {
		saved := entry.Summary.BytesBefore - entry.Summary.BytesAfter
		if saved < 0 {
			saved = 0
		}
		fmt.Printf("%-44s  %-8s  %-6d  %-12s  %d\n",
			truncateString(entry.ID, 44),
			entry.Operation,
			entry.Summary.TotalFiles,
			types.FormatSize(saved),
			entry.Summary.Failed,
		)
	}

	fmt.Println(strings.Repeat("-", 86))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'squeeze history show <id>' for details on a specific entry.")

	return nil
}

// runHistoryShow displays details of a specific run.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	entry, err := m.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println("\nRun Details")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("ID:         %s\n", entry.ID)
	fmt.Printf("Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Operation:  %s\n", entry.Operation)
	fmt.Printf("Files:      %d (%d optimized, %d failed)\n",
		entry.Summary.TotalFiles, entry.Summary.Optimized, entry.Summary.Failed)
	fmt.Printf("Size:       %s -> %s\n",
		types.FormatSize(entry.Summary.BytesBefore),
		types.FormatSize(entry.Summary.BytesAfter))

	if len(entry.Files) > 0 {
		fmt.Println("\nFiles:")
		fmt.Println(strings.Repeat("-", 70))
		fmt.Printf("%-12s  %-12s  %-10s  %s\n", "BEFORE", "AFTER", "STATUS", "PATH")
		fmt.Println(strings.Repeat("-", 70))

		// Limit display to 50 files
		limit := 50
		if len(entry.Files) < limit {
			limit = len(entry.Files)
		}

		for i := 0; i < limit; i++ {
			file := entry.Files[i]
			fmt.Printf("%-12s  %-12s  %-10s  %s\n",
				types.FormatSize(file.OriginalSize),
				types.FormatSize(file.OptimizedSize),
				file.Status,
				file.Path)
		}

		if len(entry.Files) > limit {
			fmt.Printf("\n... and %d more files\n", len(entry.Files)-limit)
		}
	}

	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	m, err := manifest.New(cfg.Manifest.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	retentionDays := cfg.Manifest.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	if err := m.Cleanup(retentionDays); err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("History cleanup complete.")
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
