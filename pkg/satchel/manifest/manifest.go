package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Errors returned by Manifest.
var (
	ErrEmptyDir      = errors.New("manifest directory cannot be empty")
	ErrEmptyID       = errors.New("entry ID cannot be empty")
	ErrEntryNotFound = errors.New("entry not found")
	ErrAmbiguousID   = errors.New("entry ID prefix is ambiguous")
)

const filePrefix = "run-"

// now is replaced in tests.
var now = time.Now

// Manifest stores run entries under a directory.
type Manifest struct {
	dir string
	mu  sync.Mutex
}

// New creates a Manifest rooted at dir. The directory is created on the
// first Record.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, ErrEmptyDir
	}
	return &Manifest{dir: dir}, nil
}

// Dir returns the manifest directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// Record persists a run and returns the created entry.
func (m *Manifest) Record(run Run) (*Entry, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generating entry ID: %w", err)
	}

	ts := now().UTC()
	entry := &Entry{
		ID:           id.String(),
		Timestamp:    ts,
		Source:       run.Source,
		Target:       run.Target,
		Status:       StatusSucceeded,
		Items:        run.Items,
		Intermediate: run.Intermediate,
	}
	if entry.Items == nil {
		entry.Items = []ItemRecord{}
	}
	if !run.Started.IsZero() {
		entry.Duration = ts.Sub(run.Started.UTC())
	}
	if run.Err != nil {
		entry.Status = StatusFailed
		entry.Error = run.Err.Error()
	}
	entry.Summary = summarize(entry.Items)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := m.write(entry); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}
	return entry, nil
}

func summarize(items []ItemRecord) Summary {
	s := Summary{Items: len(items)}
	for _, it := range items {
		if it.Error != "" {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.InputBytes += it.InputSize
		s.OutputBytes += it.OutputSize
	}
	return s
}

// filename is run-<timestamp>-<first uuid group>.json, so a plain listing
// sorts chronologically.
func filename(e *Entry) string {
	short, _, _ := strings.Cut(e.ID, "-")
	return fmt.Sprintf("%s%s-%s.json", filePrefix, e.Timestamp.Format("20060102T150405.000Z"), short)
}

// write must be called with m.mu held.
func (m *Manifest) write(e *Entry) error {
	path := filepath.Join(m.dir, filename(e))

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// readAll must be called with m.mu held. Unparseable files are skipped.
func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if !isEntryFile(f) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.dir, f.Name()))
		if err != nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil || e.ID == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func isEntryFile(f os.DirEntry) bool {
	name := f.Name()
	return !f.IsDir() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, ".json")
}

// List returns entries newest first. A limit of 0 or less returns all.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Get returns the entry whose ID equals id or, failing that, the single
// entry whose ID starts with id.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	var match *Entry
	for i := range entries {
		e := &entries[i]
		if e.ID == id {
			return e, nil
		}
		if strings.HasPrefix(e.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
			}
			match = e
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return match, nil
}

// Cleanup removes entries recorded more than retentionDays ago and returns
// how many were removed. A retention of 0 or less keeps everything.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	cutoff := now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, f := range files {
		if !isEntryFile(f) {
			continue
		}
		info, err := f.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, f.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
