package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/squeeze/pkg/squeeze/cache"
	"github.com/jamesainslie/squeeze/pkg/squeeze/config"
	"github.com/jamesainslie/squeeze/pkg/squeeze/gs"
	"github.com/jamesainslie/squeeze/pkg/squeeze/manifest"
	"github.com/jamesainslie/squeeze/pkg/squeeze/optimizer"
	"github.com/jamesainslie/squeeze/pkg/squeeze/output"
	"github.com/jamesainslie/squeeze/pkg/squeeze/resolver"
	"github.com/jamesainslie/squeeze/pkg/squeeze/runlock"
	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runOptimize is the main optimize command handler.
func runOptimize(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_ = cmd.Help()
		// Help was just printed; suppress cobra's own usage and error
		// output. The non-nil error still makes the process exit 1.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errors.New("no sources given")
	}

	// The tool must exist before any work starts.
	binary, err := gs.Find(viper.GetString("ghostscript.binary"))
	if err != nil {
		return err
	}
	printVerbose("Using Ghostscript at %s", binary)

	// Expand ~ in source paths
	sources := make([]string, len(args))
	for i, arg := range args {
		expanded, err := config.ExpandPath(arg)
		if err != nil {
			return fmt.Errorf("failed to expand path: %w", err)
		}
		sources[i] = expanded
	}

	minSize, err := parseMinSize()
	if err != nil {
		return err
	}

	targets, warnings, err := resolver.Resolve(sources, resolver.Options{
		Recursive: viper.GetBool("recursive"),
		MinSize:   minSize,
	})
	for _, w := range warnings {
		printError("skipping %s: %s", w.Path, w.Reason)
	}
	if err != nil {
		return err
	}

	// One squeeze at a time. Two runs racing on the same file would
	// both rename their temp output over it.
	lock, err := runlock.New(config.DefaultLockPath())
	if err != nil {
		return err
	}
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	dryRun := viper.GetBool("dry_run")

	// Dry runs modify nothing, so nothing may be marked optimized.
	var store *cache.Cache
	if viper.GetBool("cache.enabled") && !viper.GetBool("no_cache") && !dryRun {
		store, err = cache.Open(config.DefaultCachePath())
		if err != nil {
			printVerbose("Cache unavailable, proceeding without it: %v", err)
		} else {
			defer func() { _ = store.Close() }()
		}
	}

	tool := gs.New(gs.Config{
		Binary:  binary,
		Timeout: viper.GetDuration("timeout"),
		DryRun:  dryRun,
	})

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	interrupted := false
	go func() {
		<-sigChan
		printInfo("\nInterrupted, finishing in-flight files...")
		interrupted = true
		cancel()
	}()

	outFormat := viper.GetString("output")
	if outFormat == "" {
		outFormat = "pretty"
	}

	// Live per-file lines only make sense for human-readable output.
	var onResult func(types.Result)
	if getVerbose() && !getQuiet() && outFormat == "pretty" {
		onResult = printResultLine
	}

	runner := optimizer.New(tool, optimizer.Options{
		Workers:  viper.GetInt("workers"),
		Cache:    store,
		OnResult: onResult,
	})

	printInfo("Optimizing %d PDF file(s)...", len(targets))
	results, summary := runner.Run(ctx, targets)

	if err := printReport(outFormat, sources, results, summary, warnings, dryRun, interrupted); err != nil {
		return err
	}

	if viper.GetBool("manifest.enabled") && !dryRun {
		logManifest(results)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Targets)
	}
	return nil
}

// parseMinSize reads and validates the min-size setting.
func parseMinSize() (int64, error) {
	s := viper.GetString("min_size")
	if s == "" {
		s = config.DefaultMinSize
	}

	minSize, err := types.ParseSize(s)
	if err != nil {
		return 0, fmt.Errorf("invalid minimum size %q: %w", s, err)
	}
	return minSize, nil
}

// printResultLine reports a single finished file. Used in verbose mode
// so progress is visible while the run is still going.
func printResultLine(res types.Result) {
	switch res.Status {
	case types.StatusOptimized:
		printInfo("%s: %s -> %s (-%.2f%%)",
			res.Path,
			types.FormatSize(res.OriginalSize),
			types.FormatSize(res.OptimizedSize),
			res.Reduction())
	case types.StatusNoGain:
		printInfo("%s: no optimization needed", res.Path)
	case types.StatusSkipped:
		printInfo("%s: unchanged since last run, skipped", res.Path)
	case types.StatusFailed:
		printError("%s: %s", res.Path, res.Error)
	}
}

// printReport formats and prints the final run report.
func printReport(outFormat string, sources []string, results []types.Result, summary types.Summary,
	warnings []resolver.Warning, dryRun, interrupted bool,
) error {
	formatter, err := output.Get(outFormat)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v",
			outFormat, output.Available())
	}

	report := output.BuildReport(results, summary)
	report.Sources = sources
	report.DryRun = dryRun
	report.Interrupted = interrupted
	// Pretty output already printed per-file lines live.
	report.Verbose = getVerbose() && outFormat != "pretty"
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", w.Path, w.Reason))
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if getQuiet() && outFormat == "pretty" {
		return nil
	}
	fmt.Print(buf.String())
	return nil
}

// logManifest records the run in the history manifest. Failures are
// reported but never fail the run itself.
func logManifest(results []types.Result) {
	m, err := getManifest()
	if err != nil {
		printVerbose("Manifest unavailable: %v", err)
		return
	}
	if err := m.EnsureDir(); err != nil {
		printVerbose("Manifest unavailable: %v", err)
		return
	}

	if _, err := m.LogRun(manifest.OpOptimize, false, results); err != nil {
		printVerbose("Failed to record run in manifest: %v", err)
	}
}

// getManifest returns a manifest instance with the configured directory.
func getManifest() (*manifest.Manifest, error) {
	cfg, err := config.Load()
	if err != nil || cfg.Manifest.Path == "" {
		// Use default manifest path if config fails to load
		manifestDir, dirErr := config.ManifestDir()
		if dirErr != nil {
			return nil, errors.Join(err, dirErr)
		}
		return manifest.New(manifestDir)
	}

	return manifest.New(cfg.Manifest.Path)
}
