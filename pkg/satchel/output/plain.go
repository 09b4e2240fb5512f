package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// PlainFormatter writes an uncoloured table, one item per line.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "STATUS\tINPUT\tOUTPUT\tSIZE")
	for _, it := range r.Items {
		status, out := "ok", it.Output
		if !it.OK() {
			status, out = "failed", it.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", status, it.Input, out, humanize.IBytes(uint64(it.OutputSize)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	ok, failed := r.Counts()
	_, written := r.Totals()
	fmt.Fprintf(w, "%d ok, %d failed, %s written to %s\n", ok, failed, humanize.IBytes(uint64(written)), r.Target)
	if r.Error != "" {
		fmt.Fprintf(w, "error: %s\n", r.Error)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
