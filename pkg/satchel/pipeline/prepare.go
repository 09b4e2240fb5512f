package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/satchel/pkg/satchel/archive"
	"github.com/jamesainslie/satchel/pkg/satchel/classify"
	"github.com/jamesainslie/satchel/pkg/satchel/logging"
	"github.com/jamesainslie/satchel/pkg/satchel/naming"
)

var logger = logging.Get("pipeline")

// maxNameAttempts bounds how often Prepare draws a new name when the
// generated archive already exists.
const maxNameAttempts = 5

// newArchiveName is replaced in tests.
var newArchiveName = func() (string, error) {
	return naming.RandomName(naming.ArchiveNameLength)
}

// Prepare builds the plan for names, which must be bare filenames inside
// sourceDir in listing order. Each plain file is packed into
// <RANDOM>.zip next to it, with the original filename as the entry name,
// and replaced in the plan by that archive. Archives and encrypted files
// pass through unchanged.
//
// Running Prepare again over the same raw files packs them again under new
// names. On error the returned plan holds what was done so far, so callers
// can report the archives already created.
func Prepare(ctx context.Context, sourceDir string, names []string) (*Plan, error) {
	return prepare(ctx, sourceDir, names, Options{})
}

func prepare(ctx context.Context, sourceDir string, names []string, opts Options) (*Plan, error) {
	plan := &Plan{Items: make([]WorkItem, 0, len(names))}

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return plan, err
		}

		cat := classify.Classify(name)
		if cat != classify.RawFile {
			plan.Items = append(plan.Items, WorkItem{Filename: name, Category: cat})
			continue
		}

		rec, err := readRecord(sourceDir, name)
		if err != nil {
			return plan, err
		}
		archiveName, err := packRecord(sourceDir, rec)
		if err != nil {
			return plan, err
		}

		logger.Info("zipped", "file", name, "archive", archiveName, "size", humanize.IBytes(uint64(len(rec.Data))))
		opts.report(Progress{Stage: StageZip, File: name, Size: int64(len(rec.Data)), Done: i + 1, Total: len(names)})

		plan.Items = append(plan.Items, WorkItem{Filename: archiveName, Category: classify.PlainArchive})
		plan.Created = append(plan.Created, archiveName)
	}
	return plan, nil
}

func readRecord(dir, name string) (FileRecord, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return FileRecord{}, ioError("read", path, err)
	}
	return FileRecord{Name: name, Data: data}, nil
}

// packRecord writes rec as a single-entry archive under a fresh random
// name in dir and returns that name.
func packRecord(dir string, rec FileRecord) (string, error) {
	container, err := archive.WriteSingleEntry(rec.Name, rec.Data)
	if err != nil {
		return "", fmt.Errorf("archiving %s: %w", rec.Name, err)
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		base, err := newArchiveName()
		if err != nil {
			return "", fmt.Errorf("generating archive name: %w", err)
		}
		name := base + classify.ArchiveSuffix
		path := filepath.Join(dir, name)

		err = writeExclusive(path, container)
		if errors.Is(err, os.ErrExist) {
			logger.Warn("archive name taken, retrying", "archive", name, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return "", err
		}
		return name, nil
	}
	return "", fmt.Errorf("%w after %d attempts", ErrNameCollision, maxNameAttempts)
}

// writeExclusive creates path, failing with os.ErrExist if it is already
// there. A partly written file is removed.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return err
		}
		return ioError("create", path, err)
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(path)
		return ioError("write", path, werr)
	}
	return nil
}
