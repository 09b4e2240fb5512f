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

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" yaml:"max_size"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Daily      bool   `mapstructure:"daily" yaml:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation" yaml:"rotation"`
	Components map[string]string `mapstructure:"components" yaml:"components,omitempty"`
}

// KDFConfig holds the Argon2id parameters used for new encryptions.
// Decryption always uses the parameters stored in the file.
type KDFConfig struct {
	Time    uint32 `mapstructure:"time" yaml:"time"`
	Memory  uint32 `mapstructure:"memory" yaml:"memory"`
	Threads uint8  `mapstructure:"threads" yaml:"threads"`
}

// HistoryConfig configures the run history.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Path          string `mapstructure:"path" yaml:"path"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Source     string        `mapstructure:"source" yaml:"source"`
	Target     string        `mapstructure:"target" yaml:"target"`
	Jobs       int           `mapstructure:"jobs" yaml:"jobs"`
	Exclude    []string      `mapstructure:"exclude" yaml:"exclude"`
	Include    []string      `mapstructure:"include" yaml:"include,omitempty"`
	MaxSize    string        `mapstructure:"max_size" yaml:"max_size,omitempty"`
	SkipHidden bool          `mapstructure:"skip_hidden" yaml:"skip_hidden"`
	Output     string        `mapstructure:"output" yaml:"output"`
	KDF        KDFConfig     `mapstructure:"kdf" yaml:"kdf"`
	History    HistoryConfig `mapstructure:"history" yaml:"history"`
	Logging    LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// New returns a viper instance with satchel's search paths, environment
// binding and defaults. If file is non-empty only that file is read.
// Callers bind their flags to it before calling Load.
func New(file string) *viper.Viper {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	// SATCHEL_JOBS, SATCHEL_HISTORY_ENABLED, ...
	v.SetEnvPrefix("SATCHEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", DefaultSource())
	v.SetDefault("target", DefaultTarget())
	v.SetDefault("jobs", DefaultJobs)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("include", []string{})
	v.SetDefault("max_size", "")
	v.SetDefault("skip_hidden", false)
	v.SetDefault("output", DefaultOutput)

	v.SetDefault("kdf.time", DefaultKDFTime)
	v.SetDefault("kdf.memory", DefaultKDFMemory)
	v.SetDefault("kdf.threads", DefaultKDFThreads)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", HistoryDir())
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // empty means $XDG_STATE_HOME/satchel/satchel.log
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
}

// Load reads the config file (a missing file is not an error), applies
// environment and flag overrides bound to v, and unmarshals the result.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	for _, p := range []*string{&cfg.Source, &cfg.Target, &cfg.History.Path, &cfg.Logging.Path} {
		if *p, err = ExpandPath(*p); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("%w: jobs cannot be negative, got %d", ErrInvalidConfig, c.Jobs)
	}
	switch c.Output {
	case "pretty", "plain", "json", "yaml":
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.Output)
	}
	if c.KDF.Time == 0 || c.KDF.Threads == 0 {
		return fmt.Errorf("%w: kdf time and threads must be positive", ErrInvalidConfig)
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("%w: history.retention_days cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// ConfigDir returns $XDG_CONFIG_HOME/satchel, falling back to
// ~/.config/satchel.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "satchel"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "satchel"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/satchel for logs and history.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "satchel")
}

// HistoryDir returns the default run history directory.
func HistoryDir() string {
	return filepath.Join(StateDir(), "history")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a commented default config file to path. It reports
// false without touching anything if the file already exists.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# satchel configuration

# Directories used when satchel is not given exactly two paths.
source: %s
target: %s

# Files transformed concurrently. 1 keeps listing order; 0 picks a
# count from CPU cores and free memory.
jobs: %d

# Filename globs skipped in the source directory.
exclude:
  - .DS_Store
  - Thumbs.db
  - desktop.ini

# Skip dot-files and files larger than max_size (e.g. 25M). Empty means no limit.
skip_hidden: false
max_size: ""

# Summary format: pretty, plain, json, yaml
output: %s

# Argon2id parameters for new encryptions. memory is in KiB.
kdf:
  time: %d
  memory: %d
  threads: %d

# Run history
history:
  enabled: true
  path: %s
  retention_days: %d

logging:
  # debug, info, warn, error
  level: info
  # empty means $XDG_STATE_HOME/satchel/satchel.log
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
`, DefaultSource(), DefaultTarget(), DefaultJobs, DefaultOutput,
		DefaultKDFTime, DefaultKDFMemory, DefaultKDFThreads,
		HistoryDir(), DefaultRetentionDays)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}
