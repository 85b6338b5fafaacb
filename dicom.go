package dcmtrace

import (
	"io"
	"os"
)

/*
===============================================================================
    Preamble & File Meta
===============================================================================
*/

// dicmTestString contains the dicom magic value
var dicmTestString = "DICM"

// preambleLength is the number of bytes ahead of the magic value
const preambleLength = 128

// DetectPreamble checks for the "DICM" magic at offset 128.
// On a match the Reader is left just past the magic (offset 132); otherwise,
// including when the source is shorter than 132 bytes, it is rewound to 0.
func DetectPreamble(r *Reader) bool {
	r.SeekTo(preambleLength)
	magic, err := r.ReadBytes(uint32(len(dicmTestString)))
	if err != nil || string(magic) != dicmTestString {
		r.SeekTo(0)
		return false
	}
	return true
}

// ReadFileMeta walks the File Meta group (0002,xxxx), which is always
// Explicit VR Little Endian, printing a [FileMeta] line per element.
// It returns the Transfer Syntax UID with padding removed, or "" if absent.
//
// The Reader is left at the first element outside group 0002, or at the
// start of the first element that could not be read.
func ReadFileMeta(r *Reader, trace *Trace) string {
	return readFileMeta(r, trace, nil)
}

func readFileMeta(r *Reader, trace *Trace, stats *Stats) (uid string) {
	for {
		pos := r.Tell()
		e, err := ReadExplicitHeader(r, true)
		if err != nil {
			r.SeekTo(pos)
			return
		}
		if e.Tag.Group != metaGroup {
			r.SeekTo(pos)
			return
		}
		val, err := r.ReadBytes(e.Length)
		if err != nil {
			r.SeekTo(pos)
			return
		}
		v := string(trimPadding(val))
		trace.Linef(0, "[FileMeta] %s %s len=%d value=%s", e.Tag, e.VR, e.Length, v)
		stats.element(kindFileMeta)
		if e.Tag == TransferSyntaxUIDTag {
			uid = v
		}
		r.SeekTo(e.End())
	}
}

/*
===============================================================================
    Parser
===============================================================================
*/

// Result summarises one parse
type Result struct {
	// Preamble is whether the "DICM" magic was found
	Preamble          bool
	TransferSyntax    TransferSyntax
	TransferSyntaxUID string
	// Image holds the attributes captured from (0028,xxxx)
	Image        ImageDescriptor
	ImageWritten bool
	// EndOffset is where the top level walk stopped
	EndOffset int64
	// TraceLines is the number of lines written, [END] included
	TraceLines int
}

// Parser traces DICOM files to an io.Writer
type Parser struct {
	out  io.Writer
	cfg  Config
	opts []Option
	o    options
}

// NewParser returns a Parser writing traces to `out`.
// Unless WithStats is given, a fresh Stats is created and exposed by Stats().
func NewParser(out io.Writer, cfg Config, opts ...Option) *Parser {
	p := &Parser{out: out, cfg: cfg}
	p.o = buildOptions(cfg, opts)
	if p.o.stats == nil {
		p.o.stats = NewStats()
	}
	p.opts = append(append([]Option{}, opts...), WithStats(p.o.stats), WithLogger(p.o.logger))
	return p
}

// Stats returns the statistics recorded by this Parser
func (p *Parser) Stats() *Stats {
	return p.o.stats
}

// FromReader traces the dicom data in `source` from its current position.
// An error is returned only when the trace could not be written; malformed
// input is reported in the trace itself.
func (p *Parser) FromReader(source io.ReadSeeker) (Result, error) {
	res := Result{}
	r := NewReader(source)
	trace := NewTrace(p.out)
	log := p.o.logger

	res.Preamble = DetectPreamble(r)
	if res.Preamble {
		trace.Linef(0, "[DICOM] Magic header OK (DICM)")
		res.TransferSyntaxUID = readFileMeta(r, trace, p.o.stats)
	} else {
		trace.Linef(0, "[WARN] No DICM preamble; treating as raw dataset (no File Meta group).")
		log.Debug("file is missing preamble/magic (bytes 0-132)")
	}
	res.TransferSyntax = TransferSyntaxFromUID(res.TransferSyntaxUID)
	trace.Linef(0, "[INFO] Transfer Syntax = %s", res.TransferSyntax)
	log.Debugf("data set encoding %s from offset %d of %d", res.TransferSyntax.Encoding(), r.Tell(), r.Size())

	w := NewWalker(r, res.TransferSyntax, trace, p.cfg, p.opts...)
	w.Walk(0)
	res.Image = w.Descriptor()
	res.ImageWritten = w.ImageWritten()
	res.EndOffset = r.Tell()
	if res.EndOffset < r.Size() {
		log.Warnf("walk stopped at offset %d; %d trailing bytes not traced", res.EndOffset, r.Size()-res.EndOffset)
	}

	trace.Linef(0, "[END] Parsed OK.")
	res.TraceLines = trace.Lines()
	return res, trace.Flush()
}

// FromFile traces the dicom file at `path`
// See: FromReader for more information
func (p *Parser) FromFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, CannotOpenError(path, err)
	}
	defer f.Close()
	return p.FromReader(f)
}

// Parse traces the dicom file at `path` to `out` using GetConfig
func Parse(out io.Writer, path string) (Result, error) {
	return NewParser(out, GetConfig()).FromFile(path)
}
