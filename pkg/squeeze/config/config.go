package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// GhostscriptConfig configures the external compression tool.
type GhostscriptConfig struct {
	// Binary is an explicit path to the Ghostscript executable.
	// Empty means discover it on PATH.
	Binary string `mapstructure:"binary"`
}

// Config represents the application configuration.
type Config struct {
	Workers     int               `mapstructure:"workers"`
	Timeout     string            `mapstructure:"timeout"`
	MinSize     string            `mapstructure:"min_size"`
	Recursive   bool              `mapstructure:"recursive"`
	Ghostscript GhostscriptConfig `mapstructure:"ghostscript"`
	Cache       struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"cache"`
	Manifest struct {
		Enabled       bool   `mapstructure:"enabled"`
		Path          string `mapstructure:"path"`
		RetentionDays int    `mapstructure:"retention_days"`
	} `mapstructure:"manifest"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/squeeze/config.yaml
//   - $HOME/.config/squeeze/config.yaml
//
// Environment variables are prefixed with SQUEEZE_ (e.g., SQUEEZE_WORKERS).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "squeeze"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "squeeze"))

	v.SetEnvPrefix("SQUEEZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	v.SetDefault("manifest.path", filepath.Join(homeDir, ".config", "squeeze", ".manifest"))

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.HasPrefix(cfg.Manifest.Path, "~") {
		cfg.Manifest.Path = filepath.Join(homeDir, cfg.Manifest.Path[1:])
	}

	return &cfg, nil
}

// SetDefaults applies squeeze defaults to the given viper instance.
// The root command shares this with Load so flag-bound settings fall
// back to the same values.
func SetDefaults(v *viper.Viper) {
	setDefaults(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("min_size", DefaultMinSize)
	v.SetDefault("recursive", false)
	v.SetDefault("ghostscript.binary", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("manifest.enabled", true)
	v.SetDefault("manifest.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.components", map[string]string{
		"optimizer": "info",
		"gs":        "info",
		"watcher":   "warn",
	})
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "squeeze"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "squeeze"), nil
}

// ManifestDir returns the manifest directory path.
func ManifestDir() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, ".manifest"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	manifestDir, err := ManifestDir()
	if err != nil {
		return err
	}

	defaultConfig := fmt.Sprintf(`# Squeeze PDF Optimizer Configuration

# Number of concurrent Ghostscript invocations (1 = strictly sequential)
workers: %d

# Per-file Ghostscript timeout
timeout: %s

# Skip files smaller than this (0 = optimize everything)
min_size: %s

# Expand directories into subdirectories as well
recursive: false

# External tool settings
ghostscript:
  # Explicit path to the Ghostscript binary (empty = discover on PATH)
  binary: ""

# Skip files that are unchanged since their last successful run
cache:
  enabled: true

# Manifest settings for tracking optimization history
manifest:
  enabled: true
  path: %s
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/squeeze/squeeze.log)
  path: ""
  # Log rotation settings
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
  # Per-component log levels
  components:
    optimizer: info
    gs: info
    watcher: warn
`, DefaultWorkers, DefaultTimeout, DefaultMinSize, manifestDir, DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/squeeze/ for the run lock.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "squeeze")
}

// StateDir returns $XDG_STATE_HOME/squeeze/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "squeeze")
}

// CacheDir returns $XDG_CACHE_HOME/squeeze/ for the optimization cache.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "squeeze")
}

// DefaultCachePath returns the default optimization cache location.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "optimized")
}

// DefaultLockPath returns the default run lock file path.
func DefaultLockPath() string {
	return filepath.Join(DataDir(), "squeeze.lock")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "squeeze.log")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// EnsureCacheDir creates the cache directory if it doesn't exist.
func EnsureCacheDir() error {
	if err := os.MkdirAll(CacheDir(), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}
