package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/squeeze/pkg/squeeze/cache"
	"github.com/jamesainslie/squeeze/pkg/squeeze/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the squeeze cache",
	Long: `Commands for managing the optimization cache.

The cache remembers which PDFs have already been optimized so repeat
runs skip unchanged files. Cache data is stored in the XDG cache
directory (typically ~/.cache/squeeze/optimized).`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached data",
	Long:  `Removes the optimization cache. The next run will reprocess every file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath := config.DefaultCachePath()

		// Check if cache exists
		if _, err := os.Stat(cachePath); os.IsNotExist(err) {
			fmt.Println("Cache is already empty.")
			return nil
		}

		if err := os.RemoveAll(cachePath); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("Cache cleared.")
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Displays information about the cache including its location, size, and tracked files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath := config.DefaultCachePath()

		info, err := os.Stat(cachePath)
		if os.IsNotExist(err) {
			fmt.Println("Cache: empty (no cache data)")
			fmt.Printf("Cache location: %s\n", cachePath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stat cache: %w", err)
		}

		// Get on-disk size
		var size int64
		err = filepath.Walk(cachePath, func(_ string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				size += info.Size()
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to calculate cache size: %w", err)
		}

		fmt.Printf("Cache location: %s\n", cachePath)
		fmt.Printf("Cache size: %.2f MB\n", float64(size)/1024/1024)
		fmt.Printf("Last modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

		// Count tracked files. Opening fails if another squeeze holds
		// the cache; stats still printed above.
		store, err := cache.Open(cachePath)
		if err == nil {
			defer store.Close()
			if count, err := store.Count(); err == nil {
				fmt.Printf("Tracked files: %d\n", count)
			}
		}

		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path to the cache directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.DefaultCachePath())
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}
