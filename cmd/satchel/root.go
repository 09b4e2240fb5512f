package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/satchel/pkg/satchel/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string

	// v holds defaults, environment and flag bindings. cfg is resolved from
	// it once, before any command runs.
	v   = config.New("")
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "satchel [source target]",
		Short: "Encrypt a folder of files, or decrypt it back",
		Long: `Satchel processes every file in a source directory into a target directory.

Plain files are packed into a zip archive with a random 12-letter name,
archives are encrypted to <name>.AES256, and .AES256 files are decrypted
back to their archives. One passphrase, asked for once, serves the whole run.

Without exactly two paths, satchel uses the configured source and target
(by default ~/Downloads/in and ~/Downloads/out).

Examples:
  satchel ~/outbox ~/sealed        # Encrypt everything in ~/outbox
  satchel ~/sealed ~/restored      # Decrypt it again
  satchel -j 4 -e '*.tmp' in out   # Four files at a time, skipping *.tmp
  satchel entries photos.zip       # List what an archive holds
  satchel history                  # Previous runs`,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: initializeLogging,
		RunE:              runProcess,
	}
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/satchel/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "summary format: pretty, plain, json, yaml")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Run flags
	rootCmd.Flags().IntP("jobs", "j", 0, "files transformed at once, 0 for automatic (default 1)")
	rootCmd.Flags().StringSliceP("exclude", "e", nil, "exclude patterns, replacing the configured list (can be specified multiple times)")
	rootCmd.Flags().StringSlice("include", nil, "only process files matching these patterns")
	rootCmd.Flags().String("max-size", "", "skip files larger than this (e.g., 100M)")
	rootCmd.Flags().Bool("skip-hidden", false, "skip dot-files")
	rootCmd.Flags().Bool("discard-intermediate", false, "move generated archives to the trash after a successful run")
	rootCmd.Flags().Bool("permanent", false, "with --discard-intermediate, delete instead of trashing")
	rootCmd.Flags().Bool("no-history", false, "do not record this run")

	// Bind flags to viper
	_ = v.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = v.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = v.BindPFlag("jobs", rootCmd.Flags().Lookup("jobs"))
	_ = v.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
	_ = v.BindPFlag("include", rootCmd.Flags().Lookup("include"))
	_ = v.BindPFlag("max_size", rootCmd.Flags().Lookup("max-size"))
	_ = v.BindPFlag("skip_hidden", rootCmd.Flags().Lookup("skip-hidden"))
	_ = v.BindPFlag("discard_intermediate", rootCmd.Flags().Lookup("discard-intermediate"))
	_ = v.BindPFlag("permanent", rootCmd.Flags().Lookup("permanent"))
	_ = v.BindPFlag("no_history", rootCmd.Flags().Lookup("no-history"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return v.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return v.GetBool("quiet")
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

// printNotice prints a message to stderr unless quiet mode is enabled.
func printNotice(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
