// Package pipeline turns a source directory into encrypted (or decrypted)
// outputs in a target directory.
//
// A run has three steps. Scan lists the regular files of the source
// directory. Prepare packs every plain file into a single-entry zip with a
// random 12-letter name, leaving archives and encrypted files as they are.
// Transform encrypts each archive to <name>.AES256 and decrypts each
// .AES256 file back to its archive, writing into the target directory.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/satchel/pkg/satchel/filter"
)

// ValidateDir checks that path exists and is a directory.
func ValidateDir(path string) error {
	return validateDir(path, ErrInvalidDirectory)
}

func validateDir(path string, kind error) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", kind)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", kind, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", kind, path)
	}
	return nil
}

// Scan returns the bare names of the regular files directly inside dir, in
// listing order. Subdirectories and files rejected by f are skipped; a nil
// filter keeps everything.
func Scan(dir string, f *filter.Filter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ioError("list", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between listing and stat.
			if os.IsNotExist(err) {
				continue
			}
			return nil, ioError("stat", filepath.Join(dir, e.Name()), err)
		}
		if !f.Match(filter.FileInfo{Name: e.Name(), Size: info.Size()}) {
			logger.Debug("excluded", "file", e.Name())
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
