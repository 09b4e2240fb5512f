// Package trash disposes of the intermediate archives a run leaves in the
// source directory. Files go to the desktop trash when a trash tool is
// available and are removed otherwise.
package trash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// Method says how a file was disposed of.
type Method string

const (
	// Trashed means the file was moved to the system trash.
	Trashed Method = "trash"
	// Deleted means the file was removed permanently.
	Deleted Method = "delete"
)

const commandTimeout = 30 * time.Second

// Test seams.
var (
	goos     = runtime.GOOS
	lookPath = exec.LookPath
	run      = func(ctx context.Context, name string, args ...string) error {
		return exec.CommandContext(ctx, name, args...).Run()
	}
)

// candidates returns the commands to try in order for the current OS.
func candidates(path string) [][]string {
	switch goos {
	case "darwin":
		script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)
		return [][]string{{"osascript", "-e", script}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return [][]string{
			{"gio", "trash", path},
			{"trash-put", path},
		}
	default:
		return nil
	}
}

// MoveToTrash moves the file at path to the system trash. If no trash tool
// works, the file is removed and Deleted is returned.
func MoveToTrash(ctx context.Context, path string) (Method, error) {
	if _, err := os.Lstat(path); err != nil {
		return "", fmt.Errorf("cannot trash %q: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	for _, argv := range candidates(abs) {
		bin, err := lookPath(argv[0])
		if err != nil {
			continue
		}
		if err := run(ctx, bin, argv[1:]...); err != nil {
			continue
		}
		if _, err := os.Lstat(abs); os.IsNotExist(err) {
			return Trashed, nil
		}
	}

	if err := Remove(abs); err != nil {
		return "", err
	}
	return Deleted, nil
}

// Remove deletes the file at path permanently.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return nil
}

// Discard disposes of every path, trashing or deleting each. It keeps
// going after a failure and returns the first error.
func Discard(ctx context.Context, paths []string, permanent bool) (map[string]Method, error) {
	done := make(map[string]Method, len(paths))
	var first error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		var (
			m   Method
			err error
		)
		if permanent {
			m, err = Deleted, Remove(p)
		} else {
			m, err = MoveToTrash(ctx, p)
		}
		if err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		done[p] = m
	}
	return done, first
}
