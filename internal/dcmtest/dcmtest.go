// Package dcmtest builds DICOM byte streams for tests.
package dcmtest

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ImplicitLE, ExplicitLE and ExplicitBE are the uncompressed Transfer Syntax UIDs
const (
	ImplicitLE = "1.2.840.10008.1.2"
	ExplicitLE = "1.2.840.10008.1.2.1"
	ExplicitBE = "1.2.840.10008.1.2.2"
)

// UndefinedLength marks a delimiter-terminated value
const UndefinedLength uint32 = 0xFFFFFFFF

// Builder encodes elements into an in-memory buffer.
//
// Builder defaults to Implicit VR Little Endian: Default Transfer Syntax for DICOM
type Builder struct {
	buf      bytes.Buffer
	implicit bool
	order    binary.ByteOrder
}

// NewBuilder returns an empty Builder
func NewBuilder() *Builder {
	return &Builder{implicit: true, order: binary.LittleEndian}
}

// SetImplicitVR sets whether subsequent elements omit the VR
func (b *Builder) SetImplicitVR(isImplicitVR bool) *Builder {
	b.implicit = isImplicitVR
	return b
}

// SetLittleEndian sets the byte order of subsequent elements
func (b *Builder) SetLittleEndian(isLittleEndian bool) *Builder {
	if isLittleEndian {
		b.order = binary.LittleEndian
	} else {
		b.order = binary.BigEndian
	}
	return b
}

// SetTransferSyntax configures VR mode and byte order from a UID
func (b *Builder) SetTransferSyntax(uid string) *Builder {
	switch uid {
	case ImplicitLE:
		return b.SetImplicitVR(true).SetLittleEndian(true)
	case ExplicitBE:
		return b.SetImplicitVR(false).SetLittleEndian(false)
	default:
		return b.SetImplicitVR(false).SetLittleEndian(true)
	}
}

// Preamble writes 128 zero bytes and the "DICM" magic
func (b *Builder) Preamble() *Builder {
	b.buf.Write(make([]byte, 128))
	b.buf.WriteString("DICM")
	return b
}

// MetaElement writes a File Meta element, which is always Explicit VR
// Little Endian regardless of the Builder settings.
func (b *Builder) MetaElement(element uint16, vr string, value []byte) *Builder {
	implicit, order := b.implicit, b.order
	b.implicit, b.order = false, binary.LittleEndian
	b.Element(0x0002, element, vr, value)
	b.implicit, b.order = implicit, order
	return b
}

// Meta writes (0002,0010) Transfer Syntax UID and switches the Builder to
// that syntax for the data set that follows.
func (b *Builder) Meta(tsUID string) *Builder {
	b.MetaElement(0x0010, "UI", []byte(tsUID))
	return b.SetTransferSyntax(tsUID)
}

// pad returns `value` padded to even length
func pad(vr string, value []byte) []byte {
	if len(value)%2 == 0 {
		return value
	}
	padded := append(append([]byte{}, value...), 0x00)
	switch vr {
	case "AE", "AS", "CS", "DA", "DS", "DT", "IS", "LO", "LT", "PN", "SH", "ST", "TM", "UC", "UR", "UT":
		padded[len(padded)-1] = 0x20
	}
	return padded
}

func longLength(vr string) bool {
	switch vr {
	case "OB", "OW", "SQ", "UN", "UT", "OF", "OL", "OV", "UC", "UR":
		return true
	}
	return false
}

func (b *Builder) u16(v uint16) {
	var tmp [2]byte
	b.order.PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])
}

func (b *Builder) u32(v uint32) {
	var tmp [4]byte
	b.order.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
}

// Header writes an element header only. `vr` is ignored in implicit mode.
func (b *Builder) Header(group, element uint16, vr string, length uint32) *Builder {
	b.u16(group)
	b.u16(element)
	if b.implicit {
		b.u32(length)
		return b
	}
	if len(vr) != 2 {
		panic(fmt.Sprintf("dcmtest: bad VR %q", vr))
	}
	b.buf.WriteString(vr)
	if longLength(vr) {
		b.u16(0)
		b.u32(length)
		return b
	}
	if length > 0xFFFF {
		panic(fmt.Sprintf("dcmtest: length %d would overflow uint16 for VR %s", length, vr))
	}
	b.u16(uint16(length))
	return b
}

// Element writes a complete element, padding odd values to even length
func (b *Builder) Element(group, element uint16, vr string, value []byte) *Builder {
	value = pad(vr, value)
	b.Header(group, element, vr, uint32(len(value)))
	b.buf.Write(value)
	return b
}

// String writes a text element
func (b *Builder) String(group, element uint16, vr string, value string) *Builder {
	return b.Element(group, element, vr, []byte(value))
}

// US writes an unsigned short element in the Builder's byte order
func (b *Builder) US(group, element uint16, v uint16) *Builder {
	var tmp [2]byte
	b.order.PutUint16(tmp[:], v)
	return b.Element(group, element, "US", tmp[:])
}

// Delimiter writes an item or delimitation marker (FFFE,element). These
// never carry a VR.
func (b *Builder) Delimiter(element uint16, length uint32) *Builder {
	b.u16(0xFFFE)
	b.u16(element)
	b.u32(length)
	return b
}

// Item writes an item header (FFFE,E000)
func (b *Builder) Item(length uint32) *Builder {
	return b.Delimiter(0xE000, length)
}

// ItemDelimiter writes (FFFE,E00D) with zero length
func (b *Builder) ItemDelimiter() *Builder {
	return b.Delimiter(0xE00D, 0)
}

// SequenceDelimiter writes (FFFE,E0DD) with zero length
func (b *Builder) SequenceDelimiter() *Builder {
	return b.Delimiter(0xE0DD, 0)
}

// Raw appends `p` verbatim
func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

// Len returns the number of bytes written so far
func (b *Builder) Len() int {
	return b.buf.Len()
}

// Bytes returns the encoded stream
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

// Reader returns a fresh reader over the encoded stream
func (b *Builder) Reader() *bytes.Reader {
	return bytes.NewReader(b.buf.Bytes())
}
