package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesainslie/squeeze/pkg/squeeze/cache"
	"github.com/jamesainslie/squeeze/pkg/squeeze/config"
	"github.com/jamesainslie/squeeze/pkg/squeeze/gs"
	"github.com/jamesainslie/squeeze/pkg/squeeze/manifest"
	"github.com/jamesainslie/squeeze/pkg/squeeze/optimizer"
	"github.com/jamesainslie/squeeze/pkg/squeeze/runlock"
	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
	"github.com/jamesainslie/squeeze/pkg/squeeze/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Continuously optimize PDFs as they appear",
	Long: `Watch a directory tree and optimize every PDF that is created or
modified in it. Files are processed after they stop changing for a
short debounce interval, so partially copied files are left alone.

The optimization cache prevents a just-optimized file from being
reprocessed when its own replacement triggers a filesystem event.

Press Ctrl+C to stop watching.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce,
		"how long a file must stay quiet before it is optimized")
	rootCmd.AddCommand(watchCmd)
}

// runWatch is the watch command handler.
func runWatch(cmd *cobra.Command, args []string) error {
	binary, err := gs.Find(viper.GetString("ghostscript.binary"))
	if err != nil {
		return err
	}

	dir, err := config.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}

	lock, err := runlock.New(config.DefaultLockPath())
	if err != nil {
		return err
	}
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	// Watch mode requires the cache: without it, the rename performed
	// by each optimization would trigger the watcher again, looping
	// Ghostscript on its own output forever.
	store, err := cache.Open(config.DefaultCachePath())
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	tool := gs.New(gs.Config{
		Binary:  binary,
		Timeout: viper.GetDuration("timeout"),
	})

	runner := optimizer.New(tool, optimizer.Options{
		Workers: viper.GetInt("workers"),
		Cache:   store,
	})

	w, err := watcher.New(watchDebounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Watch(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nStopping watch...")
		cancel()
	}()

	printInfo("Watching %s for PDFs (Ctrl+C to stop)...", dir)

	m := watchManifest()

	w.Run(ctx, func(path string) {
		info, err := os.Stat(path)
		if err != nil {
			return
		}

		target := types.Target{Path: path, Size: info.Size(), ModTime: info.ModTime()}
		results, _ := runner.Run(ctx, []types.Target{target})

		if len(results) == 1 {
			printResultLine(results[0])
			if m != nil && results[0].Status != types.StatusSkipped {
				_, _ = m.LogRun(manifest.OpWatch, false, results)
			}
		}
	})

	return nil
}

// watchManifest returns the manifest for watch-mode logging, or nil
// when history is disabled or unavailable.
func watchManifest() *manifest.Manifest {
	if !viper.GetBool("manifest.enabled") {
		return nil
	}

	m, err := getManifest()
	if err != nil {
		printVerbose("Manifest unavailable: %v", err)
		return nil
	}
	if err := m.EnsureDir(); err != nil {
		printVerbose("Manifest unavailable: %v", err)
		return nil
	}
	return m
}
