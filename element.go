// Package dcmtrace walks DICOM data sets and emits a flat, indented trace of
// every element, optionally extracting uncompressed Pixel Data to a P5 image.
package dcmtrace

import (
	"fmt"
	"strconv"
)

/*
===============================================================================
    Tag
===============================================================================
*/

// Tag represents a data element tag (group, element)
type Tag struct {
	Group   uint16
	Element uint16
}

// String returns the tag as "(gggg,eeee)" in lower case hex
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

var (
	ItemTag                      = Tag{0xFFFE, 0xE000}
	ItemDelimitationTag          = Tag{0xFFFE, 0xE00D}
	SequenceDelimitationTag      = Tag{0xFFFE, 0xE0DD}
	PixelDataTag                 = Tag{0x7FE0, 0x0010}
	TransferSyntaxUIDTag         = Tag{0x0002, 0x0010}
	RowsTag                      = Tag{0x0028, 0x0010}
	ColumnsTag                   = Tag{0x0028, 0x0011}
	BitsAllocatedTag             = Tag{0x0028, 0x0100}
	PhotometricInterpretationTag = Tag{0x0028, 0x0004}
)

// metaGroup is the group shared by all File Meta elements
const metaGroup = 0x0002

// delimiterGroup is the group of the item / delimitation tags, whose headers
// never carry a VR.
const delimiterGroup = 0xFFFE

// UndefinedLength is the length field value marking a delimiter-terminated value
const UndefinedLength uint32 = 0xFFFFFFFF

/*
===============================================================================
    Element
===============================================================================
*/

// Element describes one decoded element header. The value itself is left in
// the stream, starting at `ValueStart`.
type Element struct {
	Tag Tag
	// VR is empty when the header was decoded in implicit VR mode
	VR string
	// Length is 0 when UndefinedLength is set
	Length          uint32
	ValueStart      int64
	UndefinedLength bool
}

// End returns the offset just past a defined-length value
func (e Element) End() int64 {
	return e.ValueStart + int64(e.Length)
}

// LengthString returns the length as printed in the trace
func (e Element) LengthString() string {
	if e.UndefinedLength {
		return "undefined"
	}
	return strconv.FormatUint(uint64(e.Length), 10)
}

func (e *Element) setLength(length uint32) {
	e.UndefinedLength = length == UndefinedLength
	if e.UndefinedLength {
		e.Length = 0
		return
	}
	e.Length = length
}

// HasLongLength returns whether an explicit VR header for `vr` has two
// reserved bytes followed by a 32 bit length.
func HasLongLength(vr string) bool {
	switch vr {
	case "OB", "OW", "SQ", "UN", "UT", "OF", "OL", "OV", "UC", "UR":
		return true
	default:
		return false
	}
}

/*
===============================================================================
    Header decoding
===============================================================================
*/

// HeaderReader decodes one element header at the Reader's position.
type HeaderReader func(r *Reader, little bool) (Element, error)

// readElementTag attempts to read the "Tag" component of an Element into `dst`.
//
// Should be careful calling this, as it assumes specific Reader offset.
func readElementTag(r *Reader, little bool, dst *Element) error {
	var err error
	if dst.Tag.Group, err = r.ReadUint16(little); err != nil {
		return err
	}
	dst.Tag.Element, err = r.ReadUint16(little)
	return err
}

// readElementVR attempts to read the two byte "VR" component into `dst`.
func readElementVR(r *Reader, dst *Element) error {
	vr, err := r.ReadBytes(2)
	if err != nil {
		return err
	}
	dst.VR = string(vr)
	return nil
}

// readElementLength attempts to read the "Length" component of an explicit
// VR header into `dst`. The size of the length field depends on the VR
// already read.
func readElementLength(r *Reader, little bool, dst *Element) error {
	if !HasLongLength(dst.VR) {
		length, err := r.ReadUint16(little)
		if err != nil {
			return err
		}
		dst.Length = uint32(length)
		return nil
	}
	// reserved 0x0000
	if _, err := r.ReadUint16(little); err != nil {
		return err
	}
	length, err := r.ReadUint32(little)
	if err != nil {
		return err
	}
	dst.setLength(length)
	return nil
}

// ReadImplicitHeader decodes an implicit VR header: tag(4) length(4).
func ReadImplicitHeader(r *Reader, little bool) (Element, error) {
	e := Element{}
	start := r.Tell()
	if err := readElementTag(r, little, &e); err != nil {
		return e, CorruptElementError(start, "reading tag at offset %d: %w", start, err)
	}
	length, err := r.ReadUint32(little)
	if err != nil {
		return e, CorruptElementError(start, "[%s] reading length: %w", e.Tag, err)
	}
	e.setLength(length)
	e.ValueStart = r.Tell()
	return e, nil
}

// ReadExplicitHeader decodes an explicit VR header: tag(4) vr(2) length(2),
// or tag(4) vr(2) reserved(2) length(4) for the long length VRs.
//
// Item and delimitation tags (FFFE,xxxx) carry no VR in any transfer syntax,
// so their headers are decoded implicit-style and leave VR empty.
func ReadExplicitHeader(r *Reader, little bool) (Element, error) {
	e := Element{}
	start := r.Tell()
	if err := readElementTag(r, little, &e); err != nil {
		return e, CorruptElementError(start, "reading tag at offset %d: %w", start, err)
	}
	if e.Tag.Group == delimiterGroup {
		length, err := r.ReadUint32(little)
		if err != nil {
			return e, CorruptElementError(start, "[%s] reading length: %w", e.Tag, err)
		}
		e.setLength(length)
		e.ValueStart = r.Tell()
		return e, nil
	}
	if err := readElementVR(r, &e); err != nil {
		return e, CorruptElementError(start, "[%s] reading VR: %w", e.Tag, err)
	}
	if err := readElementLength(r, little, &e); err != nil {
		return e, CorruptElementError(start, "[%s] reading length (VR=%s): %w", e.Tag, e.VR, err)
	}
	e.ValueStart = r.Tell()
	return e, nil
}
