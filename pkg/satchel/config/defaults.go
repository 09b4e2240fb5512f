// Package config provides configuration management for satchel.
package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values for satchel.
const (
	// DefaultJobs is the number of files transformed concurrently. 0 means
	// automatic.
	DefaultJobs = 1

	// DefaultOutput is the summary format.
	DefaultOutput = "pretty"

	// DefaultRetentionDays is how long run history entries are kept.
	DefaultRetentionDays = 30

	// DefaultKDFTime is the Argon2id pass count.
	DefaultKDFTime = 3

	// DefaultKDFMemory is the Argon2id memory in KiB.
	DefaultKDFMemory = 64 * 1024

	// DefaultKDFThreads is the Argon2id parallelism.
	DefaultKDFThreads = 4
)

// DefaultExclusions are filename globs skipped in every source directory.
var DefaultExclusions = []string{
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
}

// DefaultSource is the directory read when no source is given.
func DefaultSource() string {
	return filepath.Join(xdg.UserDirs.Download, "in")
}

// DefaultTarget is the directory written when no target is given.
func DefaultTarget() string {
	return filepath.Join(xdg.UserDirs.Download, "out")
}
