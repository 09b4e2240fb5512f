package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// PrettyFormatter renders a styled summary for terminals.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.header(r))
	w.WriteString("\n")
	w.WriteString(f.table(r))
	w.WriteString(f.footer(r))
	w.WriteString("\n")
	if r.Error != "" {
		w.WriteString(ErrorBox.Render(ErrorStyle.Bold(true).Render("Stopped: ") + r.Error))
		w.WriteString("\n")
	}
	return nil
}

func (f *PrettyFormatter) header(r *Result) string {
	lines := []string{
		LabelStyle.Render("Source:") + " " + ValueStyle.Render(r.Source),
		LabelStyle.Render("Target:") + " " + ValueStyle.Render(r.Target),
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) table(r *Result) string {
	if len(r.Items) == 0 {
		return MutedStyle.Render("  Nothing to do: the source directory has no files") + "\n"
	}

	inWidth := len("INPUT")
	for _, it := range r.Items {
		inWidth = max(inWidth, lipgloss.Width(it.Input))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "    %s  %s  %s\n",
		TableHeaderStyle.Render(padRight("INPUT", inWidth)),
		TableHeaderStyle.Render(padLeft("SIZE", 10)),
		TableHeaderStyle.Render("OUTPUT"))

	for _, it := range r.Items {
		mark, out := SuccessStyle.Render("✓"), ValueStyle.Render(it.Output)
		if !it.OK() {
			mark, out = ErrorStyle.Render("✗"), ErrorStyle.Render(it.Error)
		}
		fmt.Fprintf(&sb, "  %s %s  %s  %s\n",
			mark,
			ValueStyle.Render(padRight(it.Input, inWidth)),
			SizeStyle.Render(padLeft(humanize.IBytes(uint64(it.OutputSize)), 10)),
			out)
	}
	return sb.String()
}

func (f *PrettyFormatter) footer(r *Result) string {
	ok, failed := r.Counts()
	in, out := r.Totals()

	parts := []string{
		LabelStyle.Render("Done:") + " " + SuccessStyle.Render(fmt.Sprintf("%d", ok)),
	}
	if failed > 0 {
		parts = append(parts, LabelStyle.Render("Failed:")+" "+ErrorStyle.Render(fmt.Sprintf("%d", failed)))
	}
	parts = append(parts,
		LabelStyle.Render("Read:")+" "+SizeStyle.Render(humanize.IBytes(uint64(in))),
		LabelStyle.Render("Written:")+" "+SizeStyle.Render(humanize.IBytes(uint64(out))),
	)
	if r.Duration > 0 {
		parts = append(parts, MutedStyle.Render(r.Duration.Round(time.Millisecond).String()))
	}

	lines := []string{strings.Join(parts, "  ")}
	if n := len(r.Intermediate); n > 0 {
		note := fmt.Sprintf("%d intermediate archive(s) left in the source directory", n)
		if r.Discarded {
			note = fmt.Sprintf("%d intermediate archive(s) moved to trash", n)
		}
		lines = append(lines, WarningStyle.Render(note))
	}
	if r.HistoryID != "" {
		lines = append(lines, MutedStyle.Render("satchel history show "+shortID(r.HistoryID)))
	}
	return FooterBox.Render(strings.Join(lines, "\n"))
}

func padLeft(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
