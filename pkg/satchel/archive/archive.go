// Package archive reads and writes the zip containers satchel ships.
//
// All operations work on in-memory byte slices; the file helpers in file.go
// are thin adapters around os.ReadFile and os.WriteFile. The zip format is
// the standard deflate-based one, so containers open in any zip tool.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// Errors returned by the codec.
var (
	// ErrMalformedArchive indicates the bytes are not a readable zip container.
	ErrMalformedArchive = errors.New("malformed archive")

	// ErrEntryNotFound indicates no entry matched the requested name.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrEmptyEntryName indicates an entry was supplied without a name.
	ErrEmptyEntryName = errors.New("entry name cannot be empty")
)

// Entry is one named blob inside a container.
type Entry struct {
	// Name is the entry name stored in the container.
	Name string

	// Data is the uncompressed entry content.
	Data []byte
}

// EntryInfo describes an entry without its data.
type EntryInfo struct {
	// Name is the entry name stored in the container.
	Name string `json:"name"`

	// Size is the uncompressed size in bytes.
	Size uint64 `json:"size"`

	// CompressedSize is the stored size in bytes.
	CompressedSize uint64 `json:"compressed_size"`

	// Modified is the entry modification time.
	Modified time.Time `json:"modified"`

	// Method is the zip compression method (0 store, 8 deflate).
	Method uint16 `json:"method"`
}

// now is the clock used for entry timestamps; tests may replace it.
var now = time.Now

func openReader(container []byte) (*zip.Reader, error) {
	r, err := zip.NewReader(bytes.NewReader(container), int64(len(container)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedArchive, err)
	}
	return r, nil
}

// ListEntries returns the metadata of every entry in the container, in
// central directory order. Entry data is not decompressed.
func ListEntries(container []byte) ([]EntryInfo, error) {
	r, err := openReader(container)
	if err != nil {
		return nil, err
	}

	infos := make([]EntryInfo, 0, len(r.File))
	for _, f := range r.File {
		infos = append(infos, EntryInfo{
			Name:           f.Name,
			Size:           f.UncompressedSize64,
			CompressedSize: f.CompressedSize64,
			Modified:       f.Modified,
			Method:         f.Method,
		})
	}
	return infos, nil
}

// matches compares entry names exactly or ignoring case.
func matches(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// ReadEntry returns the data of the first entry whose name matches name.
// With caseSensitive false, names are compared with Unicode case folding.
// It returns ErrEntryNotFound if nothing matches.
func ReadEntry(container []byte, name string, caseSensitive bool) ([]byte, error) {
	r, err := openReader(container)
	if err != nil {
		return nil, err
	}

	for _, f := range r.File {
		if !matches(f.Name, name, caseSensitive) {
			continue
		}
		return readFile(f)
	}
	return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", ErrMalformedArchive, f.Name, err)
	}
	defer rc.Close()

	// The declared size is not trusted for preallocation. The zip reader
	// fails if the data runs past it.
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %w", ErrMalformedArchive, f.Name, err)
	}
	return data, nil
}

// dedupe collapses duplicate names: the last data for a name wins and is
// kept at the position where the name first appeared.
func dedupe(entries []Entry) ([]Entry, error) {
	index := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, ErrEmptyEntryName
		}
		if i, ok := index[e.Name]; ok {
			out[i].Data = e.Data
			continue
		}
		index[e.Name] = len(out)
		out = append(out, e)
	}
	return out, nil
}

// WriteEntries builds a new container holding entries in slice order,
// deflate-compressed. Duplicate names are last-write-wins.
func WriteEntries(entries []Entry) ([]byte, error) {
	unique, err := dedupe(entries)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := now()

	for _, e := range unique {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("creating entry %q: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("writing entry %q: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSingleEntry builds a container with exactly one entry.
func WriteSingleEntry(name string, data []byte) ([]byte, error) {
	return WriteEntries([]Entry{{Name: name, Data: data}})
}
