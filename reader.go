package dcmtrace

import (
	"encoding/binary"
	"io"
)

/*
===============================================================================
    Reader
===============================================================================
*/

// Reader provides a positioned view over an `io.ReadSeeker` with 16 and 32
// bit integer reads. Byte order is chosen per call; the Reader itself holds
// no byte order state.
//
// A failed read leaves the Reader "not good" until the next SeekTo, in the
// manner of a C++ stream's fail bit.
type Reader struct {
	src    io.ReadSeeker
	pos    int64
	size   int64
	failed bool
	tmp    [4]byte
}

// NewReader returns a Reader positioned wherever `src` currently is.
func NewReader(src io.ReadSeeker) *Reader {
	r := &Reader{src: src, size: -1}
	if pos, err := src.Seek(0, io.SeekCurrent); err == nil {
		r.pos = pos
		if end, err := src.Seek(0, io.SeekEnd); err == nil {
			r.size = end
		}
		if _, err := src.Seek(pos, io.SeekStart); err != nil {
			r.failed = true
		}
	}
	return r
}

// Tell returns the absolute offset of the next byte to be read.
func (r *Reader) Tell() int64 {
	return r.pos
}

// Size returns the total length of the source, or -1 if unknown.
func (r *Reader) Size() int64 {
	return r.size
}

// Good reports whether the last read or seek succeeded.
func (r *Reader) Good() bool {
	return !r.failed
}

// SeekTo moves to absolute offset `abs` and clears any failed state.
// Seeking past the end is allowed; it is only noticed by the next read.
func (r *Reader) SeekTo(abs int64) {
	if _, err := r.src.Seek(abs, io.SeekStart); err != nil {
		r.failed = true
		return
	}
	r.pos = abs
	r.failed = false
}

// ensure fails with `ErrEndOfStream` unless `n` more bytes are available.
// A length running past the end of the file is rejected before anything is
// allocated for it.
func (r *Reader) ensure(n int64) error {
	if r.failed {
		return InsufficientBytesError("read(%d) at offset %d: reader is not good", n, r.pos)
	}
	if r.size >= 0 && r.pos+n > r.size {
		r.failed = true
		return InsufficientBytesError("read(%d) at offset %d: only %d bytes remain", n, r.pos, max(r.size-r.pos, 0))
	}
	return nil
}

// read fills `dst` completely or fails with `ErrEndOfStream`.
func (r *Reader) read(dst []byte) error {
	if err := r.ensure(int64(len(dst))); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}
	nread, err := io.ReadFull(r.src, dst)
	r.pos += int64(nread)
	if err != nil {
		r.failed = true
		return InsufficientBytesError("read(%d) at offset %d: nread = %d", len(dst), r.pos-int64(nread), nread)
	}
	return nil
}

// ReadUint16 reads two bytes in the requested byte order.
func (r *Reader) ReadUint16(little bool) (uint16, error) {
	if err := r.read(r.tmp[:2]); err != nil {
		return 0, err
	}
	if little {
		return binary.LittleEndian.Uint16(r.tmp[:2]), nil
	}
	return binary.BigEndian.Uint16(r.tmp[:2]), nil
}

// ReadUint32 reads four bytes in the requested byte order.
func (r *Reader) ReadUint32(little bool) (uint32, error) {
	if err := r.read(r.tmp[:4]); err != nil {
		return 0, err
	}
	if little {
		return binary.LittleEndian.Uint32(r.tmp[:4]), nil
	}
	return binary.BigEndian.Uint32(r.tmp[:4]), nil
}

// ReadBytes reads exactly `n` bytes into a fresh slice.
func (r *Reader) ReadBytes(n uint32) ([]byte, error) {
	if err := r.ensure(int64(n)); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := r.read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
