package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/satchel/pkg/satchel/classify"
	"github.com/jamesainslie/satchel/pkg/satchel/config"
	"github.com/jamesainslie/satchel/pkg/satchel/logging"
	"github.com/jamesainslie/satchel/pkg/satchel/manifest"
	"github.com/jamesainslie/satchel/pkg/satchel/output"
	"github.com/jamesainslie/satchel/pkg/satchel/passphrase"
	"github.com/jamesainslie/satchel/pkg/satchel/pipeline"
	"github.com/jamesainslie/satchel/pkg/satchel/seal"
	"github.com/jamesainslie/satchel/pkg/satchel/trash"
	"github.com/jamesainslie/satchel/pkg/satchel/tuner"
	"github.com/spf13/cobra"
)

var logger = logging.Get("cli")

// runProcess is the root command handler.
func runProcess(cmd *cobra.Command, args []string) error {
	source, target := cfg.Source, cfg.Target
	if len(args) == 2 {
		var err error
		if source, err = config.ExpandPath(args[0]); err != nil {
			return err
		}
		if target, err = config.ExpandPath(args[1]); err != nil {
			return err
		}
	} else {
		printNotice("Expected a source and a target directory, got %d argument(s).", len(args))
		printNotice("Using the defaults: %s -> %s", source, target)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := process(ctx, batch{
		cfg:       cfg,
		source:    source,
		target:    target,
		prompter:  &passphrase.TerminalPrompter{},
		discard:   v.GetBool("discard_intermediate"),
		permanent: v.GetBool("permanent"),
		record:    cfg.History.Enabled && !v.GetBool("no_history"),
		quiet:     getQuiet(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	})
	if errors.Is(err, context.Canceled) {
		printNotice("Interrupted; outputs already written were kept.")
	}
	return err
}

// batch is one invocation of the main command.
type batch struct {
	cfg       *config.Config
	source    string
	target    string
	prompter  passphrase.Prompter
	discard   bool
	permanent bool
	record    bool
	quiet     bool
	stdout    io.Writer
	stderr    io.Writer
}

// process runs the pipeline, records the run and prints its summary. The
// summary and history entry are written even when the run fails part way,
// so the caller can see which outputs exist.
func process(ctx context.Context, b batch) error {
	f, err := buildFilter(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to build filter: %w", err)
	}
	sealer, err := seal.New(kdfParams(b.cfg.KDF))
	if err != nil {
		return fmt.Errorf("invalid kdf settings: %w", err)
	}
	formatter, err := output.Get(b.cfg.Output)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", b.cfg.Output, output.Available())
	}

	runner := &pipeline.Runner{
		Filter:   f,
		Cipher:   sealer,
		Prompter: b.prompter,
		Options:  pipeline.Options{Jobs: resolveJobs(b.cfg)},
	}
	if !b.quiet {
		runner.OnPlan = func(p *pipeline.Plan) { printPlan(b.stderr, p) }
		runner.Options.OnProgress = progressPrinter(b.stderr)
	}

	started := time.Now()
	report, runErr := runner.Run(ctx, b.source, b.target)
	if report == nil {
		// Nothing was touched.
		return runErr
	}

	result := newResult(b.source, b.target, report, runErr)
	result.Duration = time.Since(started)
	if runErr != nil {
		logger.Error("run failed", "source", b.source, "target", b.target, "error", runErr)
	} else {
		logger.Info("run complete", "source", b.source, "target", b.target, "items", len(report.Outcomes), "duration", result.Duration)
	}

	if runErr == nil && b.discard && len(result.Intermediate) > 0 {
		result.Discarded = discardIntermediate(ctx, b.stderr, result.Intermediate, b.permanent)
	}

	if b.record {
		entry, err := recordRun(b.cfg.History.Path, manifest.Run{
			Source:       result.Source,
			Target:       result.Target,
			Started:      started,
			Err:          runErr,
			Items:        itemRecords(report),
			Intermediate: result.Intermediate,
		})
		if err != nil {
			logger.Warn("failed to record run", "error", err)
			fmt.Fprintf(b.stderr, "Warning: run not recorded in history: %v\n", err)
		} else {
			result.HistoryID = entry.ID
		}
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if _, err := b.stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return runErr
}

// resolveJobs returns the configured job count, detecting one from the
// machine when it is 0.
func resolveJobs(c *config.Config) int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	res, err := tuner.Detect()
	if err != nil {
		logger.Warn("failed to detect system resources", "error", err)
	}
	jobs := tuner.Jobs(res, c.KDF.Memory)
	printVerbose("System: %d CPUs, %s available; using %d jobs",
		res.CPUCores, humanize.IBytes(uint64(res.AvailableRAM)), jobs)
	return jobs
}

// kdfParams converts the config section into cipher parameters.
func kdfParams(k config.KDFConfig) seal.Params {
	return seal.Params{Time: k.Time, Memory: k.Memory, Threads: k.Threads}
}

// newResult converts a pipeline report for the output formatters.
func newResult(source, target string, report *pipeline.Report, runErr error) *output.Result {
	r := &output.Result{
		Source: absPath(source),
		Target: absPath(target),
		Items:  make([]output.Item, 0, len(report.Outcomes)),
	}
	for _, o := range report.Outcomes {
		r.Items = append(r.Items, output.Item{
			Input:      o.Item.Filename,
			Category:   o.Item.Category.String(),
			Output:     o.Output,
			InputSize:  o.InputSize,
			OutputSize: o.OutputSize,
			Error:      errString(o.Err),
		})
	}
	if report.Plan != nil {
		for _, name := range report.Plan.Created {
			r.Intermediate = append(r.Intermediate, filepath.Join(r.Source, name))
		}
	}
	r.Error = errString(runErr)
	return r
}

func itemRecords(report *pipeline.Report) []manifest.ItemRecord {
	records := make([]manifest.ItemRecord, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		records = append(records, manifest.ItemRecord{
			Input:      o.Item.Filename,
			Category:   o.Item.Category.String(),
			Output:     o.Output,
			InputSize:  o.InputSize,
			OutputSize: o.OutputSize,
			Error:      errString(o.Err),
		})
	}
	return records
}

func recordRun(dir string, run manifest.Run) (*manifest.Entry, error) {
	m, err := manifest.New(dir)
	if err != nil {
		return nil, err
	}
	return m.Record(run)
}

// discardIntermediate trashes (or deletes) the archives Prepare created. It
// reports whether all of them are gone.
func discardIntermediate(ctx context.Context, w io.Writer, paths []string, permanent bool) bool {
	done, err := trash.Discard(ctx, paths, permanent)
	for p, m := range done {
		logger.Info("discarded intermediate", "path", p, "method", string(m))
	}
	if err != nil {
		logger.Warn("failed to discard intermediate archives", "error", err)
		fmt.Fprintf(w, "Warning: could not discard intermediate archives: %v\n", err)
		return false
	}
	return true
}

// printPlan lists the work before the passphrase is requested.
func printPlan(w io.Writer, plan *pipeline.Plan) {
	if len(plan.Items) == 0 {
		fmt.Fprintln(w, "Nothing to do.")
		return
	}
	if n := len(plan.Created); n > 0 {
		fmt.Fprintf(w, "Packed %d file(s) into new archives.\n", n)
	}
	fmt.Fprintf(w, "Processing %d file(s):\n", len(plan.Items))
	for _, item := range plan.Items {
		verb := "encrypt"
		if item.Category == classify.Encrypted {
			verb = "decrypt"
		}
		fmt.Fprintf(w, "  %-8s %s\n", verb, item.Filename)
	}
}

// progressPrinter reports each written output. It may be called from
// several goroutines.
func progressPrinter(w io.Writer) func(pipeline.Progress) {
	var mu sync.Mutex
	return func(p pipeline.Progress) {
		if p.Stage != pipeline.StageWrite {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "  [%d/%d] %s (%s)\n", p.Done, p.Total, p.File, humanize.IBytes(uint64(p.Size)))
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
