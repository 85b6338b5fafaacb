package dcmtrace

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Trace is the line oriented sink for the element trace. Each line is
// indented by two spaces per nesting level.
//
// Write errors are sticky: once one occurs, further lines are dropped and
// the error is reported by Err / Flush.
type Trace struct {
	w     *bufio.Writer
	err   error
	lines int
}

// NewTrace returns a Trace writing to `w`
func NewTrace(w io.Writer) *Trace {
	return &Trace{w: bufio.NewWriter(w)}
}

// Linef writes one line at `depth`. Arguments are handled in the manner of
// fmt.Printf; the trailing newline is added.
func (t *Trace) Linef(depth int, format string, a ...interface{}) {
	if t.err != nil {
		return
	}
	if depth > 0 {
		if _, t.err = t.w.WriteString(strings.Repeat("  ", depth)); t.err != nil {
			return
		}
	}
	if _, t.err = fmt.Fprintf(t.w, format, a...); t.err != nil {
		return
	}
	if t.err = t.w.WriteByte('\n'); t.err != nil {
		return
	}
	t.lines++
}

// Lines returns the number of lines written so far
func (t *Trace) Lines() int {
	return t.lines
}

// Err returns the first write error, if any
func (t *Trace) Err() error {
	return t.err
}

// Flush writes any buffered lines to the underlying writer
func (t *Trace) Flush() error {
	if t.err != nil {
		return t.err
	}
	t.err = t.w.Flush()
	return t.err
}
