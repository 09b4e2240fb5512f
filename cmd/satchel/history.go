package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/satchel/pkg/satchel/config"
	"github.com/jamesainslie/satchel/pkg/satchel/manifest"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	Long: `View the history of satchel runs.

Every run is recorded with its source and target directories, each file
that was processed and what it became, and the error that stopped it.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific run",
	Long:  `Display detailed information about a run by its ID or a unique ID prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns a manifest instance with the configured directory.
func getManifest() (*manifest.Manifest, error) {
	dir := cfg.History.Path
	if dir == "" {
		dir = config.HistoryDir()
	}
	return manifest.New(dir)
}

// runHistory lists recent runs.
func runHistory(_ *cobra.Command, _ []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'satchel <source> <target>' to process a directory.")
		return nil
	}

	// Print header
	fmt.Printf("\n%-8s  %-16s  %-9s  %-6s  %-10s  %s\n", "ID", "WHEN", "STATUS", "FILES", "SIZE", "SOURCE")
	fmt.Println(strings.Repeat("-", 80))

	for _, entry := range entries {
		fmt.Printf("%-8s  %-16s  %-9s  %-6d  %-10s  %s\n",
			truncateString(entry.ID, 8),
			entry.Timestamp.Local().Format("2006-01-02 15:04"),
			entry.Status,
			entry.Summary.Items,
			humanize.IBytes(uint64(entry.Summary.OutputBytes)),
			entry.Source,
		)
	}

	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Println("Use 'satchel history show <id>' for details on a specific entry.")

	return nil
}

// runHistoryShow displays details of a specific run.
func runHistoryShow(_ *cobra.Command, args []string) error {
	id := args[0]

	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	entry, err := m.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	// Display entry details
	fmt.Println("\nRun Details")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:         %s\n", entry.ID)
	fmt.Printf("Timestamp:  %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Source:     %s\n", entry.Source)
	fmt.Printf("Target:     %s\n", entry.Target)
	fmt.Printf("Status:     %s\n", entry.Status)
	fmt.Printf("Duration:   %s\n", entry.Duration.Round(time.Millisecond))
	fmt.Printf("Files:      %d ok, %d failed\n", entry.Summary.Succeeded, entry.Summary.Failed)
	fmt.Printf("Written:    %s\n", humanize.IBytes(uint64(entry.Summary.OutputBytes)))
	if entry.Error != "" {
		fmt.Printf("Error:      %s\n", entry.Error)
	}

	if len(entry.Items) > 0 {
		fmt.Println("\nFiles:")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("%-10s  %-24s  %s\n", "CATEGORY", "INPUT", "OUTPUT")
		fmt.Println(strings.Repeat("-", 60))

		for _, item := range entry.Items {
			out := item.Output
			if item.Error != "" {
				out = "FAILED: " + item.Error
			}
			fmt.Printf("%-10s  %-24s  %s\n", item.Category, item.Input, out)
		}
	}

	if len(entry.Intermediate) > 0 {
		fmt.Println("\nIntermediate archives:")
		for _, p := range entry.Intermediate {
			fmt.Printf("  %s\n", p)
		}
	}

	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	retentionDays := cfg.History.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d entries.", removed)
	return nil
}

// truncateString truncates a string to maxLen.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
