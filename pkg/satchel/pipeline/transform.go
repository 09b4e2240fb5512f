package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/satchel/pkg/satchel/archive"
	"github.com/jamesainslie/satchel/pkg/satchel/classify"
	"golang.org/x/sync/errgroup"
)

// Cipher encrypts and decrypts whole files with a passphrase.
// seal.Sealer implements it.
type Cipher interface {
	Encrypt(passphrase, data []byte) ([]byte, error)
	Decrypt(passphrase, data []byte) ([]byte, error)
}

// Transform encrypts every PlainArchive item to <targetDir>/<name>.AES256
// and decrypts every Encrypted item to <targetDir>/<name without .AES256>.
//
// One passphrase serves the whole plan, so the first failure stops the run
// and is returned along with the report. Outputs written before the
// failure are kept. A plan in which two items would write the same output
// fails with ErrOutputConflict before anything is written. With
// opts.Jobs > 1 items run concurrently and the first failure cancels the
// rest.
func Transform(ctx context.Context, plan *Plan, sourceDir, targetDir string, c Cipher, passphrase []byte, opts Options) (*Report, error) {
	t := &transformer{
		sourceDir:  sourceDir,
		targetDir:  targetDir,
		cipher:     c,
		passphrase: passphrase,
		opts:       opts,
		total:      len(plan.Items),
	}
	report := &Report{Plan: plan}
	if err := checkOutputs(plan); err != nil {
		return report, err
	}

	if opts.Jobs < 2 {
		for _, item := range plan.Items {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			out := t.run(item)
			report.Outcomes = append(report.Outcomes, out)
			if out.Err != nil {
				return report, out.Err
			}
		}
		return report, nil
	}

	outcomes := make([]*Outcome, len(plan.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)

	for i, item := range plan.Items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out := t.run(item)
			outcomes[i] = &out
			return out.Err
		})
	}
	err := g.Wait()

	for _, o := range outcomes {
		if o != nil {
			report.Outcomes = append(report.Outcomes, *o)
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	return report, err
}

// checkOutputs fails if two items map to the same output name, e.g.
// a.zip and a.zip.AES256.AES256. Items whose output name cannot be
// derived are left for the transform itself to report.
func checkOutputs(plan *Plan) error {
	seen := make(map[string]string, len(plan.Items))
	for _, item := range plan.Items {
		var out string
		switch item.Category {
		case classify.PlainArchive:
			out = classify.EncryptedName(item.Filename)
		case classify.Encrypted:
			name, err := classify.DecryptedName(item.Filename)
			if err != nil {
				continue
			}
			out = name
		default:
			continue
		}
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrOutputConflict, prev, item.Filename, out)
		}
		seen[out] = item.Filename
	}
	return nil
}

type transformer struct {
	sourceDir  string
	targetDir  string
	cipher     Cipher
	passphrase []byte
	opts       Options
	total      int
	done       atomic.Int64
}

// run takes one item through read, dispatch and write.
func (t *transformer) run(item WorkItem) Outcome {
	out := Outcome{Item: item}

	rec, err := readRecord(t.sourceDir, item.Filename)
	if err != nil {
		out.Err = err
		return out
	}
	out.InputSize = int64(len(rec.Data))

	result, err := t.dispatch(rec, item.Category)
	if err != nil {
		out.Err = err
		return out
	}

	path := filepath.Join(t.targetDir, result.Name)
	if err := writeAtomic(path, result.Data); err != nil {
		out.Err = err
		return out
	}
	out.Output = result.Name
	out.OutputSize = int64(len(result.Data))

	done := int(t.done.Add(1))
	logger.Info("wrote", "file", result.Name, "size", humanize.IBytes(uint64(out.OutputSize)), "done", done, "total", t.total)
	t.opts.report(Progress{Stage: StageWrite, File: result.Name, Size: out.OutputSize, Done: done, Total: t.total})
	return out
}

func (t *transformer) dispatch(rec FileRecord, cat classify.Category) (FileRecord, error) {
	switch cat {
	case classify.Encrypted:
		name, err := classify.DecryptedName(rec.Name)
		if err != nil {
			return FileRecord{}, fmt.Errorf("%s: %w", rec.Name, err)
		}
		logger.Debug("decrypting", "file", rec.Name, "size", humanize.IBytes(uint64(len(rec.Data))))
		t.opts.report(Progress{Stage: StageDecrypt, File: rec.Name, Size: int64(len(rec.Data)), Total: t.total})

		plain, err := t.cipher.Decrypt(t.passphrase, rec.Data)
		if err != nil {
			return FileRecord{}, fmt.Errorf("decrypting %s: %w", rec.Name, err)
		}
		if classify.Classify(name) == classify.PlainArchive {
			if _, err := archive.ListEntries(plain); err != nil {
				return FileRecord{}, fmt.Errorf("decrypted %s: %w", rec.Name, err)
			}
		}
		return FileRecord{Name: name, Data: plain}, nil

	case classify.PlainArchive:
		// An unreadable archive would only be discovered after the round
		// trip, so check it before encrypting.
		if _, err := archive.ListEntries(rec.Data); err != nil {
			return FileRecord{}, fmt.Errorf("%s: %w", rec.Name, err)
		}
		logger.Debug("encrypting", "file", rec.Name, "size", humanize.IBytes(uint64(len(rec.Data))))
		t.opts.report(Progress{Stage: StageEncrypt, File: rec.Name, Size: int64(len(rec.Data)), Total: t.total})

		sealed, err := t.cipher.Encrypt(t.passphrase, rec.Data)
		if err != nil {
			return FileRecord{}, fmt.Errorf("encrypting %s: %w", rec.Name, err)
		}
		return FileRecord{Name: classify.EncryptedName(rec.Name), Data: sealed}, nil

	default:
		return FileRecord{}, fmt.Errorf("%w: %s is %s", ErrUnreachableCategory, rec.Name, cat)
	}
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place, replacing any existing file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".satchel-*")
	if err != nil {
		return ioError("create", path, err)
	}
	tmp := f.Name()

	_, werr := f.Write(data)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmp, 0o644)
	}
	if werr == nil {
		werr = os.Rename(tmp, path)
	}
	if werr != nil {
		_ = os.Remove(tmp)
		return ioError("write", path, werr)
	}
	return nil
}
