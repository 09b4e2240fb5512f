// Package passphrase collects the single passphrase a satchel run uses.
// Interactive input is masked and must be typed twice.
package passphrase

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Errors returned by prompters.
var (
	// ErrMismatch means the confirmation differed from the first entry.
	ErrMismatch = errors.New("passphrases do not match")

	// ErrEmpty means an empty passphrase was entered.
	ErrEmpty = errors.New("passphrase cannot be empty")
)

// Prompter supplies the passphrase for a run.
type Prompter interface {
	Passphrase() ([]byte, error)
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// TerminalPrompter reads the passphrase from a terminal without echo.
type TerminalPrompter struct {
	// In is the terminal to read from. Nil means os.Stdin.
	In *os.File

	// Out receives the prompts. Nil means os.Stderr.
	Out io.Writer
}

func (p *TerminalPrompter) read(prompt string) ([]byte, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}

	if _, err := fmt.Fprint(out, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	return pw, nil
}

// Passphrase prompts twice and returns the passphrase if both entries
// match. The returned slice should be wiped by the caller when done.
func (p *TerminalPrompter) Passphrase() ([]byte, error) {
	first, err := p.read("Enter passphrase: ")
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, ErrEmpty
	}

	second, err := p.read("Repeat passphrase: ")
	if err != nil {
		Wipe(first)
		return nil, err
	}
	defer Wipe(second)

	if !bytes.Equal(first, second) {
		Wipe(first)
		return nil, ErrMismatch
	}
	return first, nil
}

// Static is a Prompter that always returns the same passphrase.
type Static []byte

// Passphrase returns a copy of the static passphrase.
func (s Static) Passphrase() ([]byte, error) {
	if len(s) == 0 {
		return nil, ErrEmpty
	}
	return append([]byte(nil), s...), nil
}

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
