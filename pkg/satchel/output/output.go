// Package output renders the summary of a satchel run.
//
// Formatters register themselves by name at init time:
//
//	f, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := f.Format(&buf, result); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Item is one row of the summary.
type Item struct {
	Input      string `json:"input" yaml:"input"`
	Category   string `json:"category" yaml:"category"`
	Output     string `json:"output,omitempty" yaml:"output,omitempty"`
	InputSize  int64  `json:"input_size" yaml:"input_size"`
	OutputSize int64  `json:"output_size" yaml:"output_size"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the item was transformed.
func (i Item) OK() bool {
	return i.Error == ""
}

// Result is everything a formatter needs to describe a run.
type Result struct {
	Source       string        `json:"source" yaml:"source"`
	Target       string        `json:"target" yaml:"target"`
	Items        []Item        `json:"items" yaml:"items"`
	Intermediate []string      `json:"intermediate,omitempty" yaml:"intermediate,omitempty"`
	Discarded    bool          `json:"discarded" yaml:"discarded"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
	HistoryID    string        `json:"history_id,omitempty" yaml:"history_id,omitempty"`

	// Error is the error that stopped the run, if any.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Counts returns the number of succeeded and failed items.
func (r *Result) Counts() (ok, failed int) {
	for _, it := range r.Items {
		if it.OK() {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// Totals returns the bytes read and written by successful items.
func (r *Result) Totals() (in, out int64) {
	for _, it := range r.Items {
		if it.OK() {
			in += it.InputSize
			out += it.OutputSize
		}
	}
	return in, out
}

// Formatter writes a Result to w.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry maps names to formatter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns the registered names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the default registry's formatters.
func Available() []string {
	return DefaultRegistry.Available()
}
