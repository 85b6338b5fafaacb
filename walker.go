package dcmtrace

import (
	"bytes"
	"errors"

	"go.uber.org/zap"
)

// Option configures a Walker or Parser
type Option func(*options)

type options struct {
	sink   ImageSink
	stats  *Stats
	logger *zap.SugaredLogger
}

// WithImageSink replaces the default PGMSink
func WithImageSink(sink ImageSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithStats records walk statistics into `stats`
func WithStats(stats *Stats) Option {
	return func(o *options) {
		o.stats = stats
	}
}

// WithLogger replaces the package logger for diagnostics
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(cfg Config, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sink == nil && cfg.ExtractPixels {
		o.sink = PGMSink{Path: cfg.ImagePath}
	}
	if !cfg.ExtractPixels {
		o.sink = nil
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}

// trimPadding strips trailing space and NUL padding from a value
func trimPadding(val []byte) []byte {
	return bytes.TrimRight(val, "\x20\x00")
}

/*
===============================================================================
    Walker
===============================================================================
*/

// Walker walks one data set. A Walker is good for exactly one walk: the
// image descriptor it captures and the at-most-once image extraction both
// belong to that walk.
type Walker struct {
	r      *Reader
	ts     TransferSyntax
	little bool
	header HeaderReader
	trace  *Trace

	desc         *ImageDescriptor
	sink         ImageSink
	imageHandled bool
	imageWritten bool

	stats    *Stats
	log      *zap.SugaredLogger
	maxValue uint32
	annotate bool
}

// NewWalker returns a Walker reading from `r` (positioned at the first data
// set element) in transfer syntax `ts`, writing to `trace`.
func NewWalker(r *Reader, ts TransferSyntax, trace *Trace, cfg Config, opts ...Option) *Walker {
	o := buildOptions(cfg, opts)
	maxValue := cfg.MaxValueLength
	if maxValue == 0 {
		maxValue = DefaultMaxValueLength
	}
	return &Walker{
		r:        r,
		ts:       ts,
		little:   ts.LittleEndian(),
		header:   ts.HeaderReader(),
		trace:    trace,
		desc:     &ImageDescriptor{},
		sink:     o.sink,
		stats:    o.stats,
		log:      o.logger,
		maxValue: maxValue,
		annotate: cfg.Annotate,
	}
}

// Descriptor returns the image attributes captured so far
func (w *Walker) Descriptor() ImageDescriptor {
	return *w.desc
}

// ImageWritten returns whether the image sink accepted the Pixel Data
func (w *Walker) ImageWritten() bool {
	return w.imageWritten
}

// Walk walks elements at nesting level `depth` until the stream ends, a
// delimiter is found, or an element cannot be decoded. Walk never fails: an
// undecodable element leaves the Reader at that element's first byte.
func (w *Walker) Walk(depth int) {
	w.walk(depth, -1)
}

// walk is Walk bounded by `limit`, the end offset of the enclosing
// defined-length item or sequence (-1 when unbounded). Undefined-length
// children inherit the bound, so each element is printed exactly once.
func (w *Walker) walk(depth int, limit int64) {
	w.stats.depth(depth)
	for {
		pos := w.r.Tell()
		if !w.r.Good() {
			return
		}
		if limit >= 0 && pos >= limit {
			return
		}
		e, err := w.header(w.r, w.little)
		if err != nil {
			w.recover(pos, err)
			return
		}

		switch e.Tag {
		case SequenceDelimitationTag:
			w.trace.Linef(depth, "[SEQ_DELIM] Sequence delimiter found")
			w.stats.element(kindDelimiter)
			return
		case ItemDelimitationTag:
			w.trace.Linef(depth, "[ITEM_DELIM] Item delimiter found")
			w.stats.element(kindDelimiter)
			return
		case ItemTag:
			w.item(e, depth, limit)
			continue
		}

		w.capture(e)

		if e.Tag == PixelDataTag || (!e.UndefinedLength && e.Length > w.maxValue) {
			w.skip(e, depth)
			continue
		}

		if e.UndefinedLength && (e.VR == "SQ" || e.VR == "") {
			vr := e.VR
			if vr == "" {
				vr = "SQ(implicit)"
			}
			w.trace.Linef(depth, "[SEQUENCE] %s VR=%s len=undefined%s", e.Tag, vr, annotation(w.annotate, e.Tag))
			w.stats.element(kindSequence)
			w.walk(depth+1, limit)
			continue
		}

		if e.VR == "SQ" && !e.UndefinedLength && e.Length > 0 {
			w.trace.Linef(depth, "[SEQUENCE] %s VR=%s len=%d%s", e.Tag, e.VR, e.Length, annotation(w.annotate, e.Tag))
			w.stats.element(kindSequence)
			w.walk(depth+1, e.End())
			w.r.SeekTo(e.End())
			continue
		}

		if !w.regular(e, pos, depth) {
			return
		}
	}
}

// recover rewinds to `pos` after a failed read. Running out of bytes exactly
// at an element boundary is the normal end of a data set and is not counted.
func (w *Walker) recover(pos int64, err error) {
	w.r.SeekTo(pos)
	if pos == w.r.Size() && errors.Is(err, ErrEndOfStream) {
		w.log.Debugf("end of data set at offset %d", pos)
		return
	}
	w.stats.recovery()
	w.log.Warnw("ending nesting level at unreadable element", "offset", pos, "error", err)
}

func (w *Walker) item(e Element, depth int, limit int64) {
	w.trace.Linef(depth, "[ITEM] %s len=%s", e.Tag, e.LengthString())
	w.stats.element(kindItem)
	if e.UndefinedLength {
		w.walk(depth+1, limit)
		return
	}
	if e.Length > 0 {
		w.walk(depth+1, e.End())
		w.r.SeekTo(e.End())
	}
}

// capture records image descriptor attributes. The Reader is left where it
// was found.
func (w *Walker) capture(e Element) {
	if e.UndefinedLength {
		return
	}
	switch e.Tag {
	case RowsTag, ColumnsTag, BitsAllocatedTag:
		if e.Length < 2 {
			return
		}
	case PhotometricInterpretationTag:
		if e.Length > 64 {
			return
		}
	default:
		return
	}

	save := w.r.Tell()
	defer w.r.SeekTo(save)
	w.r.SeekTo(e.ValueStart)

	switch e.Tag {
	case RowsTag:
		if v, err := w.r.ReadUint16(w.little); err == nil {
			w.desc.Rows = v
		}
	case ColumnsTag:
		if v, err := w.r.ReadUint16(w.little); err == nil {
			w.desc.Columns = v
		}
	case BitsAllocatedTag:
		if v, err := w.r.ReadUint16(w.little); err == nil {
			w.desc.BitsAllocated = v
		}
	case PhotometricInterpretationTag:
		if v, err := w.r.ReadBytes(e.Length); err == nil {
			w.desc.Photometric = string(trimPadding(v))
			w.log.Debugf("photometric interpretation %q", w.desc.Photometric)
		}
	}
}

// skip handles Pixel Data and oversized values
func (w *Walker) skip(e Element, depth int) {
	w.trace.Linef(depth, "[SKIP] %s len=%s%s", e.Tag, e.LengthString(), annotation(w.annotate, e.Tag))
	w.stats.element(kindSkipped)
	if e.UndefinedLength {
		w.trace.Linef(depth, "[WARN] Undefined-length Pixel Data; skipping to next element.")
		w.log.Warnw("encapsulated pixel data is not extracted", "offset", e.ValueStart)
		return
	}
	if e.Tag != PixelDataTag || !w.extract(e, depth) {
		w.stats.skipped(e.Length)
	}
	w.r.SeekTo(e.End())
}

// extract hands the Pixel Data value to the image sink, once per walk.
// It returns whether the value was read.
func (w *Walker) extract(e Element, depth int) bool {
	if w.sink == nil || w.imageHandled {
		return false
	}
	w.imageHandled = true
	if !w.desc.HasGeometry() {
		w.trace.Linef(depth, "[WARN] Pixel Data has no Rows/Columns; image not written.")
		w.log.Warnw("pixel data has no geometry", "rows", w.desc.Rows, "columns", w.desc.Columns)
		w.stats.image("nogeometry")
		return false
	}
	pixels, err := w.r.ReadBytes(e.Length)
	if err != nil {
		w.log.Warnw("cannot read pixel data", "offset", e.ValueStart, "length", e.Length, "error", err)
		w.stats.image("error")
		return false
	}
	if err := w.sink.WriteImage(*w.desc, pixels); err != nil {
		w.log.Errorw("cannot write image", "error", err)
		w.stats.image("error")
		return true
	}
	w.imageWritten = true
	w.stats.image("written")
	w.log.Infof("wrote %dx%d image (%d bits allocated, %s)", w.desc.Columns, w.desc.Rows, w.desc.BitsAllocated, w.desc.Photometric)
	return true
}

// regular reads and prints an ordinary element. It returns false when the
// value could not be read and the level must end.
func (w *Walker) regular(e Element, pos int64, depth int) bool {
	var val []byte
	if e.Length > 0 {
		var err error
		if val, err = w.r.ReadBytes(e.Length); err != nil {
			w.recover(pos, err)
			return false
		}
	}
	vr := e.VR
	if vr == "" {
		vr = "--"
	}
	w.trace.Linef(depth, "[DataSet] %s VR=%s len=%d  Value=\"%s\"%s", e.Tag, vr, e.Length, trimPadding(val), annotation(w.annotate, e.Tag))
	w.stats.element(kindDataSet)
	if !e.UndefinedLength {
		w.r.SeekTo(e.End())
	}
	return true
}
