package main

import (
	"errors"

	"github.com/jamesainslie/satchel/pkg/satchel/archive"
	"github.com/jamesainslie/satchel/pkg/satchel/passphrase"
	"github.com/jamesainslie/satchel/pkg/satchel/pipeline"
	"github.com/jamesainslie/satchel/pkg/satchel/seal"
)

// Process exit codes.
const (
	exitOK               = 0
	exitFailure          = 1
	exitMismatch         = 8
	exitSourceNotDir     = 9
	exitTargetNotDir     = 10
	exitDecryptionFailed = 11
	exitMalformedArchive = 12
)

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, passphrase.ErrMismatch):
		return exitMismatch
	case errors.Is(err, pipeline.ErrSourceNotDirectory):
		return exitSourceNotDir
	case errors.Is(err, pipeline.ErrTargetNotDirectory):
		return exitTargetNotDir
	case errors.Is(err, seal.ErrDecryptionFailed):
		return exitDecryptionFailed
	case errors.Is(err, archive.ErrMalformedArchive):
		return exitMalformedArchive
	default:
		return exitFailure
	}
}
