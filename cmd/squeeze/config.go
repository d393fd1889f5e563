package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jamesainslie/squeeze/pkg/squeeze/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage squeeze configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/squeeze/config.yaml (if set)
  2. ~/.config/squeeze/config.yaml

Environment variables can override config file settings using the SQUEEZE_ prefix:
  SQUEEZE_WORKERS=2
  SQUEEZE_TIMEOUT=60s
  SQUEEZE_GHOSTSCRIPT_BINARY=/opt/gs/bin/gs`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		printError("Failed to load configuration: %v", err)
		// Show defaults anyway
		cfg = &config.Config{
			Workers: config.DefaultWorkers,
			Timeout: config.DefaultTimeout,
			MinSize: config.DefaultMinSize,
		}
		cfg.Cache.Enabled = true
		cfg.Manifest.Enabled = true
		cfg.Manifest.RetentionDays = config.DefaultRetentionDays
	}

	// Show config file being used
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("workers:                %d\n", cfg.Workers)
	fmt.Printf("timeout:                %s\n", cfg.Timeout)
	fmt.Printf("min_size:               %s\n", cfg.MinSize)
	fmt.Printf("recursive:              %t\n", cfg.Recursive)
	fmt.Printf("ghostscript.binary:     %s\n", displayOrAuto(cfg.Ghostscript.Binary))
	fmt.Printf("cache.enabled:          %t\n", cfg.Cache.Enabled)
	fmt.Printf("manifest.enabled:       %t\n", cfg.Manifest.Enabled)
	fmt.Printf("manifest.path:          %s\n", cfg.Manifest.Path)
	fmt.Printf("manifest.retention:     %d days\n", cfg.Manifest.RetentionDays)
	fmt.Printf("logging.level:          %s\n", cfg.Logging.Level)

	// Show any environment overrides
	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"SQUEEZE_WORKERS",
		"SQUEEZE_TIMEOUT",
		"SQUEEZE_MIN_SIZE",
		"SQUEEZE_RECURSIVE",
		"SQUEEZE_GHOSTSCRIPT_BINARY",
		"SQUEEZE_CACHE_ENABLED",
	}

	found := false
	for _, name := range envVars {
		if value := os.Getenv(name); value != "" {
			fmt.Printf("%s=%s\n", name, value)
			found = true
		}
	}
	if !found {
		fmt.Println("(none)")
	}

	return nil
}

// displayOrAuto renders an empty binary setting as auto-discovery.
func displayOrAuto(s string) string {
	if s == "" {
		return "(auto-detect on PATH)"
	}
	return s
}

// runConfigInit creates a default configuration file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	printInfo("Created config file: %s", configPath)
	return nil
}

// runConfigPath prints the configuration file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	fmt.Println(filepath.Join(configDir, "config.yaml"))
	return nil
}

// runConfigEdit opens the configuration file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	// Create default config if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.WriteDefault(); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
		printInfo("Created default config file: %s", configPath)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	editCmd := exec.Command(editor, configPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr

	if err := editCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}
