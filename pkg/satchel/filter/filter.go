// Package filter decides which files of a source directory take part in a
// satchel run. Patterns are gobwas globs matched against bare filenames.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
)

// DefaultExcludes are platform metadata files that never belong in a batch.
var DefaultExcludes = []string{".DS_Store", "Thumbs.db", "desktop.ini"}

// ErrInvalidPattern indicates that a glob pattern could not be compiled.
var ErrInvalidPattern = errors.New("invalid pattern")

// ErrInvalidSize indicates that a size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// FileInfo is the subset of file metadata the filter looks at.
type FileInfo struct {
	Name string
	Size int64
}

// Filter holds compiled include/exclude patterns and size bounds.
type Filter struct {
	// Include contains glob patterns. If non-empty, files must match at least one.
	Include []string

	// Exclude contains glob patterns. Matching files are skipped.
	Exclude []string

	// MaxSize skips files larger than this many bytes. 0 means unlimited.
	MaxSize int64

	// SkipHidden skips dot-files.
	SkipHidden bool

	include []glob.Glob
	exclude []glob.Glob
}

// Option is a functional option for configuring a Filter.
type Option func(*Filter)

// WithInclude sets the include glob patterns.
func WithInclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Include = patterns
	}
}

// WithExclude appends exclude glob patterns to the defaults.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Exclude = append(f.Exclude, patterns...)
	}
}

// WithoutDefaults drops DefaultExcludes.
func WithoutDefaults() Option {
	return func(f *Filter) {
		f.Exclude = nil
	}
}

// WithMaxSize sets the size limit in bytes. Negative values mean unlimited.
func WithMaxSize(size int64) Option {
	return func(f *Filter) {
		if size < 0 {
			size = 0
		}
		f.MaxSize = size
	}
}

// WithSkipHidden sets whether dot-files are skipped.
func WithSkipHidden(skip bool) Option {
	return func(f *Filter) {
		f.SkipHidden = skip
	}
}

// New creates a Filter and compiles its patterns. Options apply in order,
// so WithoutDefaults must come before WithExclude to keep the added patterns.
func New(opts ...Option) (*Filter, error) {
	f := &Filter{
		Exclude: append([]string(nil), DefaultExcludes...),
	}
	for _, opt := range opts {
		opt(f)
	}

	var err error
	if f.include, err = compile(f.Include); err != nil {
		return nil, err
	}
	if f.exclude, err = compile(f.Exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Match reports whether the file should be processed. A nil Filter matches
// everything.
func (f *Filter) Match(fi FileInfo) bool {
	if f == nil {
		return true
	}
	if f.SkipHidden && strings.HasPrefix(fi.Name, ".") {
		return false
	}
	if f.MaxSize > 0 && fi.Size > f.MaxSize {
		return false
	}
	if matchesAny(fi.Name, f.exclude) {
		return false
	}
	if len(f.include) > 0 && !matchesAny(fi.Name, f.include) {
		return false
	}
	return true
}

func matchesAny(name string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ParseSize parses a human-readable size such as "25M", "10 MiB" or
// "1.5GB". The empty string and "0" mean no limit.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidSize, s)
	}

	// Bare unit letters are binary, as in "25M".
	in := s
	upper := strings.ToUpper(s)
	if last := upper[len(upper)-1]; last == 'K' || last == 'M' || last == 'G' || last == 'T' {
		in += "iB"
	}

	n, err := humanize.ParseBytes(in)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return int64(n), nil
}
