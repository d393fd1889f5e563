// Package config provides configuration management for the squeeze PDF optimizer.
package config

// Default configuration values for squeeze.
const (
	// DefaultWorkers is the number of concurrent Ghostscript invocations.
	DefaultWorkers = 4

	// DefaultTimeout is the per-file Ghostscript timeout.
	DefaultTimeout = "120s"

	// DefaultMinSize is the minimum file size worth handing to
	// Ghostscript; smaller files are not worth a subprocess round trip.
	DefaultMinSize = "0"

	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/squeeze"

	// DefaultRetentionDays is the default number of days to retain
	// manifest entries.
	DefaultRetentionDays = 30
)
