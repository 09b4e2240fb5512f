package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/jamesainslie/satchel/pkg/satchel/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage satchel configuration settings.

Configuration is loaded from:
  1. the file given with --config
  2. $XDG_CONFIG_HOME/satchel/config.yaml (if set)
  3. ~/.config/satchel/config.yaml

Environment variables can override config file settings using the SATCHEL_ prefix:
  SATCHEL_SOURCE=~/outbox
  SATCHEL_JOBS=4
  SATCHEL_HISTORY_ENABLED=false`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration from all sources.`,
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

	PersistentPreRun: skipConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,

	PersistentPreRun: skipConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,

	PersistentPreRun: skipConfig,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(_ *cobra.Command, _ []string) error {
	return showConfig(os.Stdout, cfg, v.ConfigFileUsed(), os.Environ())
}

// showConfig writes the effective configuration as YAML, preceded by the
// file it came from and followed by any SATCHEL_ environment overrides.
func showConfig(w io.Writer, c *config.Config, file string, environ []string) error {
	if file != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", file)
	} else {
		fmt.Fprintf(w, "Config file: (using defaults, no file found)\n\n")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	if _, err := w.Write(data); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	var overrides []string
	for _, kv := range environ {
		if strings.HasPrefix(kv, "SATCHEL_") {
			overrides = append(overrides, kv)
		}
	}
	if len(overrides) == 0 {
		fmt.Fprintln(w, "(none)")
		return nil
	}
	sort.Strings(overrides)
	for _, kv := range overrides {
		fmt.Fprintln(w, kv)
	}
	return nil
}

// configFilePath returns the file given with --config or the default path.
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config file exists
	if _, err := config.WriteDefault(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	// Determine editor
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	created, err := config.WriteDefault(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if !created {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'satchel config edit' to modify it.")
		return nil
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(_ *cobra.Command, _ []string) error {
	configPath, err := configFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Println(configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}
	return nil
}
