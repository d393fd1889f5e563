package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/squeeze/pkg/squeeze/config"
	"github.com/jamesainslie/squeeze/pkg/squeeze/logging"
	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "squeeze src [src ...]",
		Short: "Optimize PDF files in place using Ghostscript",
		Long: `Squeeze recompresses PDF files with Ghostscript and replaces each
original with the smaller result. Files that cannot be made smaller are
left untouched.

Sources may be individual PDF files or directories containing PDFs.
Directory arguments expand to their top-level PDFs; use -r to recurse.

Examples:
  squeeze report.pdf             # Optimize a single file
  squeeze ~/scans                # Optimize all PDFs in a directory
  squeeze -r -v ~/archive        # Recurse, reporting each file
  squeeze -w 1 big.pdf huge.pdf  # Strictly sequential processing
  squeeze --dry-run ~/scans      # Report savings without modifying files
  squeeze watch ~/inbox          # Optimize new PDFs as they appear
  squeeze history                # View past runs`,
		Args: cobra.ArbitraryArgs,
		RunE: runOptimize,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/squeeze/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "report the result of each individual PDF")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")

	// Flags for the optimize run itself
	rootCmd.Flags().BoolP("recursive", "r", false, "recurse into subdirectories of directory sources")
	rootCmd.Flags().IntP("workers", "w", 0, "concurrent Ghostscript processes (0=default)")
	rootCmd.Flags().StringP("output", "o", "", "output format: pretty, plain, json, jsonl")
	rootCmd.Flags().StringP("min-size", "s", "", "skip files smaller than this (e.g., 100K, 1M)")
	rootCmd.Flags().String("gs-binary", "", "explicit path to the Ghostscript binary")
	rootCmd.Flags().Duration("timeout", 0, "per-file Ghostscript timeout (0=default)")
	rootCmd.Flags().BoolP("dry-run", "d", false, "report savings without replacing any file")
	rootCmd.Flags().Bool("no-cache", false, "reprocess files even if unchanged since their last run")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("recursive", rootCmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("min_size", rootCmd.Flags().Lookup("min-size"))
	_ = viper.BindPFlag("ghostscript.binary", rootCmd.Flags().Lookup("gs-binary"))
	_ = viper.BindPFlag("timeout", rootCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("no_cache", rootCmd.Flags().Lookup("no-cache"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "squeeze"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "squeeze"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("SQUEEZE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	initLogging()
}

// initLogging wires the logging package from the loaded configuration.
// Logging failures are not fatal; the run proceeds without a log file.
func initLogging() {
	components := viper.GetStringMapString("logging.components")

	cfg := logging.Config{
		Level:      viper.GetString("logging.level"),
		Path:       viper.GetString("logging.path"),
		Components: components,
		Rotation: logging.RotationConfig{
			MaxAge:     viper.GetInt("logging.rotation.max_age"),
			MaxBackups: viper.GetInt("logging.rotation.max_backups"),
		},
	}

	if maxSize := viper.GetString("logging.rotation.max_size"); maxSize != "" {
		if n, err := types.ParseSize(maxSize); err == nil {
			cfg.Rotation.MaxSize = n
		}
	}

	if getVerbose() {
		cfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
