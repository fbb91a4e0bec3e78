package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// StaticConfirmer answers every question with the same value.
type StaticConfirmer bool

// Confirm returns the static answer.
func (c StaticConfirmer) Confirm(context.Context, string, string) (bool, error) {
	return bool(c), nil
}

// PromptConfirmer asks on a terminal. Accepts s, sim, y, yes (any case).
type PromptConfirmer struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer reads answers from in and writes questions to out.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm prints the question and reads one line.
//
// Postcondition: EOF is a "no" answer, not an error.
func (c *PromptConfirmer) Confirm(ctx context.Context, title, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.out, "%s\n%s [s/N] ", title, question); err != nil {
		return false, err
	}
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
