package dcmtrace

import (
	"errors"
	"fmt"
)

// ErrEndOfStream is returned (wrapped) whenever a read asks for more bytes
// than the source has left.
var ErrEndOfStream = errors.New("end of stream")

// ErrNoImageGeometry is returned by an ImageSink when Rows or Columns were
// never captured.
var ErrNoImageGeometry = errors.New("rows/columns unknown")

// InsufficientBytes is an error representing that the source ran out of
// bytes part way through a read.
type InsufficientBytes struct {
	error
}

// InsufficientBytesError raises an `InsufficientBytes` error.
// The returned error always matches `ErrEndOfStream` via `errors.Is`.
func InsufficientBytesError(format string, a ...interface{}) *InsufficientBytes {
	return &InsufficientBytes{fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrEndOfStream)}
}

func (e *InsufficientBytes) Unwrap() error { return e.error }

// CorruptElement is an error representing that an element header could not
// be decoded at `Offset`.
type CorruptElement struct {
	error
	Offset int64
}

// CorruptElementError raises a `CorruptElement` error
func CorruptElementError(offset int64, format string, a ...interface{}) *CorruptElement {
	return &CorruptElement{error: fmt.Errorf(format, a...), Offset: offset}
}

func (e *CorruptElement) Unwrap() error { return e.error }

// CannotOpen is an error representing that the input file could not be opened
type CannotOpen struct {
	error
	Path string
}

// CannotOpenError raises a `CannotOpen` error
func CannotOpenError(path string, err error) *CannotOpen {
	return &CannotOpen{error: fmt.Errorf("cannot open %q: %w", path, err), Path: path}
}

func (e *CannotOpen) Unwrap() error { return e.error }

// UnwritableImage is an error representing that the image sink failed
type UnwritableImage struct {
	error
}

// UnwritableImageError raises an `UnwritableImage` error
func UnwritableImageError(format string, a ...interface{}) *UnwritableImage {
	return &UnwritableImage{fmt.Errorf(format, a...)}
}

func (e *UnwritableImage) Unwrap() error { return e.error }
