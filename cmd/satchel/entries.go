package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jamesainslie/satchel/pkg/satchel/archive"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var entriesCmd = &cobra.Command{
	Use:   "entries <archive.zip>",
	Short: "List the entries of an archive",
	Long: `List every entry of a zip archive with its size, compressed size and
modification time. Use -o json or -o yaml for machine-readable output.`,
	Args: cobra.ExactArgs(1),
	RunE: runEntries,
}

func init() {
	rootCmd.AddCommand(entriesCmd)
}

// runEntries lists the entries of an archive.
func runEntries(_ *cobra.Command, args []string) error {
	return printEntries(os.Stdout, args[0], cfg.Output)
}

// printEntries writes the entries of the archive at path in the given format.
func printEntries(w io.Writer, path, format string) error {
	entries, err := archive.ListFile(path)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []archive.EntryInfo{}
		}
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "%s: %d entries\n", path, len(entries))
	for _, e := range entries {
		fmt.Fprintln(w)
		fmt.Fprint(w, archive.Describe(e))
	}
	return nil
}
