package archive

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

// ListFile lists the entries of the container stored at path.
func ListFile(path string) ([]EntryInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	infos, err := ListEntries(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return infos, nil
}

// ReadFileEntry reads one entry from the container stored at path.
func ReadFileEntry(path, name string, caseSensitive bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	entry, err := ReadEntry(data, name, caseSensitive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entry, nil
}

// WriteFile writes a new container holding entries to path.
func WriteFile(path string, entries []Entry) error {
	data, err := WriteEntries(entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Describe returns a multi-line human-readable summary of an entry.
func Describe(info EntryInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:            %s\n", info.Name)
	fmt.Fprintf(&b, "Size:            %s\n", humanize.IBytes(info.Size))
	fmt.Fprintf(&b, "Compressed size: %s\n", humanize.IBytes(info.CompressedSize))
	fmt.Fprintf(&b, "Modified:        %s\n", info.Modified.Format("2006-01-02 15:04:05"))
	return b.String()
}
