// Package classify assigns a file to one of the categories that drive the
// satchel pipeline. Classification looks at the filename suffix only; file
// content is never inspected.
package classify

import (
	"errors"
	"fmt"
	"strings"
)

// Filename suffixes recognised by the pipeline.
const (
	// EncryptedSuffix marks files produced by the encrypt step.
	EncryptedSuffix = ".AES256"

	// ArchiveSuffix is the suffix satchel uses for the archives it creates.
	ArchiveSuffix = ".zip"

	// ArchiveSuffixUpper is the upper-case archive suffix, accepted on input.
	ArchiveSuffixUpper = ".ZIP"
)

// Category is the transform a file needs.
type Category int

const (
	// RawFile is any file that is neither an archive nor encrypted.
	RawFile Category = iota
	// PlainArchive is an unencrypted zip archive.
	PlainArchive
	// Encrypted is a previously encrypted archive.
	Encrypted
)

// Category string constants.
const (
	categoryRaw       = "raw"
	categoryArchive   = "archive"
	categoryEncrypted = "encrypted"
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case RawFile:
		return categoryRaw
	case PlainArchive:
		return categoryArchive
	case Encrypted:
		return categoryEncrypted
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ErrInvalidCategory indicates that the category string could not be parsed.
var ErrInvalidCategory = errors.New("invalid category")

// ParseCategory parses a string produced by Category.String.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case categoryRaw:
		return RawFile, nil
	case categoryArchive:
		return PlainArchive, nil
	case categoryEncrypted:
		return Encrypted, nil
	default:
		return RawFile, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Classify returns the category for a bare filename. The first matching rule
// wins:
//   - ends with ".AES256" (case-sensitive): Encrypted
//   - ends with ".zip" or ".ZIP": PlainArchive
//   - anything else: RawFile
//
// Mixed-case archive suffixes such as ".Zip" are RawFile.
func Classify(name string) Category {
	switch {
	case strings.HasSuffix(name, EncryptedSuffix):
		return Encrypted
	case strings.HasSuffix(name, ArchiveSuffix), strings.HasSuffix(name, ArchiveSuffixUpper):
		return PlainArchive
	default:
		return RawFile
	}
}

// ErrNoBaseName is returned when stripping the encrypted suffix leaves
// nothing to name the output after.
var ErrNoBaseName = errors.New("no base name left after removing suffix")

// EncryptedName returns the output name for an encrypted archive.
func EncryptedName(name string) string {
	return name + EncryptedSuffix
}

// DecryptedName strips the encrypted suffix from name.
func DecryptedName(name string) (string, error) {
	if !strings.HasSuffix(name, EncryptedSuffix) {
		return "", fmt.Errorf("%q does not end with %s", name, EncryptedSuffix)
	}
	base := strings.TrimSuffix(name, EncryptedSuffix)
	if base == "" {
		return "", fmt.Errorf("%w: %q", ErrNoBaseName, name)
	}
	return base, nil
}
