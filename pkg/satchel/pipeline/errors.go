package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirectory means a path is missing or is not a directory.
	ErrInvalidDirectory = errors.New("not a directory")

	// ErrSourceNotDirectory and ErrTargetNotDirectory say which side of a
	// run was invalid. Both match ErrInvalidDirectory.
	ErrSourceNotDirectory = fmt.Errorf("source %w", ErrInvalidDirectory)
	ErrTargetNotDirectory = fmt.Errorf("target %w", ErrInvalidDirectory)

	// ErrUnreachableCategory means a plan item was neither an archive nor
	// an encrypted file. Prepare never produces one.
	ErrUnreachableCategory = errors.New("unexpected category in plan")

	// ErrOutputConflict means two plan items would write the same output.
	ErrOutputConflict = errors.New("two files would produce the same output")

	// ErrNameCollision means every generated archive name already existed.
	ErrNameCollision = errors.New("could not find an unused archive name")
)

// IOError is a filesystem failure on a specific path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}
