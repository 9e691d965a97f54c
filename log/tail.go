package log

import (
	"bytes"
	"strings"
	"sync"
)

// Tail is an [io.Writer] that keeps the last n complete lines written to it.
// Partial lines are held until their newline arrives. Safe for concurrent
// use.
//
// Create instances with [NewTail].
type Tail struct {
	lines   []string
	partial []byte
	size    int
	mu      sync.Mutex
}

// NewTail creates a [Tail] retaining up to n lines. Values less than 1 are
// clamped to 1.
func NewTail(n int) *Tail {
	return &Tail{size: max(n, 1)}
}

// Write records every complete line in b. It always returns len(b), nil.
func (t *Tail) Write(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.partial = append(t.partial, b...)

	for {
		i := bytes.IndexByte(t.partial, '\n')
		if i < 0 {
			break
		}

		t.push(strings.TrimRight(string(t.partial[:i]), "\r"))
		t.partial = t.partial[i+1:]
	}

	return len(b), nil
}

func (t *Tail) push(line string) {
	if len(t.lines) == t.size {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.size-1]
	}

	t.lines = append(t.lines, line)
}

// Lines returns a copy of the retained lines, oldest first.
func (t *Tail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.lines))
	copy(out, t.lines)

	return out
}
