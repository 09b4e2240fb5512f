package main

import (
	"github.com/jamesainslie/satchel/pkg/satchel/config"
	"github.com/jamesainslie/satchel/pkg/satchel/filter"
	"github.com/jamesainslie/satchel/pkg/satchel/logging"
	"github.com/spf13/cobra"
)

// initializeLogging resolves the configuration and starts logging. It runs
// before every command.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	return logging.Init(loggingConfig(cfg.Logging, getVerbose()))
}

// loggingConfig builds the logging setup from the config file section.
// Verbose mode mirrors debug output to stderr.
func loggingConfig(lc config.LoggingConfig, verbose bool) logging.Config {
	out := logging.Config{
		Level:      lc.Level,
		Path:       lc.Path,
		Rotation:   parseRotationConfig(lc.Rotation),
		Components: lc.Components,
	}
	if verbose {
		out.ConsoleLevel = "debug"
	}
	return out
}

// parseRotationConfig converts config file rotation settings. An empty or
// unparseable max_size falls back to the default.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
	if rc.MaxSize == "" {
		return out
	}
	size, err := filter.ParseSize(rc.MaxSize)
	if err != nil || size == 0 {
		printVerbose("ignoring logging.rotation.max_size %q: %v", rc.MaxSize, err)
		return out
	}
	out.MaxSize = size
	return out
}

// skipConfig replaces initializeLogging for commands that must work before
// a config file exists.
func skipConfig(_ *cobra.Command, _ []string) {}
