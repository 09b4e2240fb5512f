package pipeline

import (
	"context"
	"fmt"

	"github.com/jamesainslie/satchel/pkg/satchel/filter"
	"github.com/jamesainslie/satchel/pkg/satchel/passphrase"
)

// Runner performs a complete run: validate, scan, prepare, ask for the
// passphrase, transform.
type Runner struct {
	Filter   *filter.Filter
	Cipher   Cipher
	Prompter passphrase.Prompter
	Options  Options

	// OnPlan, if set, is called after preparation and before the
	// passphrase is requested.
	OnPlan func(*Plan)
}

// Run processes sourceDir into targetDir. Both are checked before any
// other I/O. The passphrase is requested once, after preparation, and not
// at all when there is nothing to do. The report is non-nil whenever
// preparation started, even if the run failed.
func (r *Runner) Run(ctx context.Context, sourceDir, targetDir string) (*Report, error) {
	if err := validateDir(sourceDir, ErrSourceNotDirectory); err != nil {
		return nil, err
	}
	if err := validateDir(targetDir, ErrTargetNotDirectory); err != nil {
		return nil, err
	}

	names, err := Scan(sourceDir, r.Filter)
	if err != nil {
		return nil, err
	}
	logger.Info("scanned", "source", sourceDir, "files", len(names))

	plan, err := prepare(ctx, sourceDir, names, r.Options)
	report := &Report{Plan: plan}
	if err != nil {
		return report, err
	}
	if r.OnPlan != nil {
		r.OnPlan(plan)
	}
	if len(plan.Items) == 0 {
		logger.Info("nothing to do", "source", sourceDir)
		return report, nil
	}

	pw, err := r.Prompter.Passphrase()
	if err != nil {
		return report, fmt.Errorf("reading passphrase: %w", err)
	}
	defer passphrase.Wipe(pw)

	return Transform(ctx, plan, sourceDir, targetDir, r.Cipher, pw, r.Options)
}
