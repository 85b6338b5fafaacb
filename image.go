package dcmtrace

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// DefaultImagePath is where PGMSink writes when no path is configured
const DefaultImagePath = "output_image.pgm"

// ImageDescriptor collects the image attributes seen during a walk.
// Its lifetime is exactly one walk.
type ImageDescriptor struct {
	Rows          uint16
	Columns       uint16
	BitsAllocated uint16
	Photometric   string
}

// HasGeometry returns whether both Rows and Columns are non zero
func (d ImageDescriptor) HasGeometry() bool {
	return d.Rows != 0 && d.Columns != 0
}

// MaxVal returns the netpbm maximum grey value for the allocated bit depth
func (d ImageDescriptor) MaxVal() int {
	if d.BitsAllocated <= 8 {
		return 255
	}
	return 65535
}

// ImageSink receives the raw Pixel Data of the first defined-length Pixel
// Data element in a walk.
type ImageSink interface {
	WriteImage(desc ImageDescriptor, pixels []byte) error
}

// EncodePGM writes `pixels` as a binary (P5) netpbm grey map.
// The pixel bytes are copied verbatim after the header.
func EncodePGM(w io.Writer, desc ImageDescriptor, pixels []byte) error {
	if !desc.HasGeometry() {
		return UnwritableImageError("encoding P5 image: %w", ErrNoImageGeometry)
	}
	if _, err := fmt.Fprintf(w, "P5\n%d %d\n%d\n", desc.Columns, desc.Rows, desc.MaxVal()); err != nil {
		return UnwritableImageError("writing P5 header: %w", err)
	}
	if _, err := w.Write(pixels); err != nil {
		return UnwritableImageError("writing %d pixel bytes: %w", len(pixels), err)
	}
	return nil
}

// PGMSink writes the image to a file at `Path`
type PGMSink struct {
	Path string
}

// WriteImage implements ImageSink
func (s PGMSink) WriteImage(desc ImageDescriptor, pixels []byte) (err error) {
	if !desc.HasGeometry() {
		return UnwritableImageError("%s: %w", s.path(), ErrNoImageGeometry)
	}
	f, err := os.Create(s.path())
	if err != nil {
		return UnwritableImageError("creating %s: %w", s.path(), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = UnwritableImageError("closing %s: %w", s.path(), cerr)
		}
	}()
	bw := bufio.NewWriter(f)
	if err = EncodePGM(bw, desc, pixels); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return UnwritableImageError("flushing %s: %w", s.path(), err)
	}
	return nil
}

func (s PGMSink) path() string {
	if s.Path == "" {
		return DefaultImagePath
	}
	return s.Path
}
