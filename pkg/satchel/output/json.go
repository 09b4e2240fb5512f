package output

import (
	"bytes"
	"encoding/json"
)

type summary struct {
	Succeeded   int   `json:"succeeded" yaml:"succeeded"`
	Failed      int   `json:"failed" yaml:"failed"`
	InputBytes  int64 `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int64 `json:"output_bytes" yaml:"output_bytes"`
}

// document is the shape shared by the json and yaml formatters.
type document struct {
	Run     *Result `json:"run" yaml:"run"`
	Summary summary `json:"summary" yaml:"summary"`
}

func newDocument(r *Result) document {
	ok, failed := r.Counts()
	in, out := r.Totals()
	d := document{
		Run:     r,
		Summary: summary{Succeeded: ok, Failed: failed, InputBytes: in, OutputBytes: out},
	}
	if r.Items == nil {
		cp := *r
		cp.Items = []Item{}
		d.Run = &cp
	}
	return d
}

// JSONFormatter writes the result as one indented JSON document.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)
