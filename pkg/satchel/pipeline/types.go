package pipeline

import "github.com/jamesainslie/satchel/pkg/satchel/classify"

// FileRecord is a file's name and contents as read from disk.
type FileRecord struct {
	Name string
	Data []byte
}

// WorkItem is one file for the transform stage. Category is always
// classify.PlainArchive or classify.Encrypted.
type WorkItem struct {
	Filename string            `json:"filename"`
	Category classify.Category `json:"category"`
}

// Plan is the ordered work for one run.
type Plan struct {
	Items []WorkItem

	// Created lists the archives Prepare wrote into the source directory,
	// as bare names in plan order.
	Created []string
}

// Outcome is the result of transforming one item. Err is nil on success.
type Outcome struct {
	Item       WorkItem
	Output     string
	InputSize  int64
	OutputSize int64
	Err        error
}

// Report lists the outcome of every item that was attempted, in plan
// order. Items skipped after a failure are absent.
type Report struct {
	Plan     *Plan
	Outcomes []Outcome
}

// Succeeded returns the outcomes without an error.
func (r *Report) Succeeded() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err == nil {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the outcomes with an error.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Stage names a step reported through Options.OnProgress.
type Stage string

const (
	StageZip     Stage = "zip"
	StageEncrypt Stage = "encrypt"
	StageDecrypt Stage = "decrypt"
	StageWrite   Stage = "write"
)

// Progress is sent to Options.OnProgress as items are handled.
type Progress struct {
	Stage Stage
	File  string
	Size  int64
	Done  int
	Total int
}

// Options tunes the transform.
type Options struct {
	// Jobs is the number of items transformed at once. Values below 2 mean
	// strictly sequential processing in plan order.
	Jobs int

	// OnProgress, if set, is called for every stage of every item. It may be
	// called from several goroutines when Jobs > 1.
	OnProgress func(Progress)
}

func (o Options) report(p Progress) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}
