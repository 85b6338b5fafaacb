package dcmtrace

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failAfterN struct {
	pos       int
	failAfter int
}

func (w *failAfterN) Write(p []byte) (int, error) {
	if w.failAfter <= w.pos {
		return 0, errors.New("error")
	}
	w.pos += len(p)
	return len(p), nil
}

func TestTraceIndent(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	trace := NewTrace(&out)
	trace.Linef(0, "[SEQUENCE] %s", Tag{0x0040, 0x0275})
	trace.Linef(1, "[ITEM]")
	trace.Linef(2, "[DataSet]")
	assert.NoError(t, trace.Flush())
	assert.Equal(t, "[SEQUENCE] (0040,0275)\n  [ITEM]\n    [DataSet]\n", out.String())
	assert.Equal(t, 3, trace.Lines())
}

func TestTraceStickyError(t *testing.T) {
	t.Parallel()
	trace := NewTrace(&failAfterN{failAfter: 0})
	trace.Linef(0, "[END] Parsed OK.")
	assert.Error(t, trace.Flush())
	assert.Error(t, trace.Err())
	trace.Linef(0, "dropped")
	assert.Equal(t, 1, trace.Lines())
}
