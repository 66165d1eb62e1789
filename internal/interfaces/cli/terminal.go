// Package cli is the cashier's terminal front end for the checkout controller.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/grocerypos/backend/internal/domain/checkout"
)

// Terminal is a line-oriented console shared by the shell loop and its
// confirmation prompts
type Terminal struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	out     io.Writer
}

// NewTerminal reads lines from in and writes to out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Out returns the writer the terminal prints to
func (t *Terminal) Out() io.Writer {
	return t.out
}

// Printf writes formatted text
func (t *Terminal) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

// ReadLine prints prompt and returns the next line. ok is false at end of input
func (t *Terminal) ReadLine(prompt string) (line string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prompt != "" {
		_, _ = io.WriteString(t.out, prompt)
	}
	if !t.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.scanner.Text()), true
}

// Confirm asks a yes/no question. Anything but y or yes declines
func (t *Terminal) Confirm(prompt string) bool {
	answer, ok := t.ReadLine(prompt + " [y/N] ")
	if !ok {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Confirmer adapts the terminal for the checkout controller
func (t *Terminal) Confirmer() checkout.Confirmer {
	return checkout.ConfirmFunc(t.Confirm)
}
