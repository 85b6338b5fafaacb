package dcmtrace

import (
	"fmt"

	dicomuid "github.com/suyashkumar/dicom/pkg/uid"
)

// TransferSyntax identifies how the data set following the File Meta group
// is encoded. It is decided once and never changes during a walk.
type TransferSyntax int

const (
	// Unknown is any UID other than the three uncompressed syntaxes below.
	// It is read as Explicit VR Little Endian.
	Unknown TransferSyntax = iota
	ImplicitLE
	ExplicitLE
	ExplicitBE
)

// TransferSyntaxFromUID maps a Transfer Syntax UID (padding already removed)
// onto a TransferSyntax. Anything unrecognised, including "", is Unknown.
func TransferSyntaxFromUID(uid string) TransferSyntax {
	switch uid {
	case dicomuid.ImplicitVRLittleEndian:
		return ImplicitLE
	case dicomuid.ExplicitVRLittleEndian:
		return ExplicitLE
	case dicomuid.ExplicitVRBigEndian:
		return ExplicitBE
	default:
		return Unknown
	}
}

// LittleEndian returns whether multi-byte values are little endian
func (ts TransferSyntax) LittleEndian() bool {
	return ts != ExplicitBE
}

// ImplicitVR returns whether element headers omit the VR
func (ts TransferSyntax) ImplicitVR() bool {
	return ts == ImplicitLE
}

// HeaderReader returns the header decoding strategy for this syntax
func (ts TransferSyntax) HeaderReader() HeaderReader {
	if ts.ImplicitVR() {
		return ReadImplicitHeader
	}
	return ReadExplicitHeader
}

// Encoding returns the implicit/explicit + byte order pair for this syntax
func (ts TransferSyntax) Encoding() Encoding {
	return Encoding{ImplicitVR: ts.ImplicitVR(), LittleEndian: ts.LittleEndian()}
}

func (ts TransferSyntax) String() string {
	switch ts {
	case ImplicitLE:
		return "Implicit VR Little Endian"
	case ExplicitLE:
		return "Explicit VR Little Endian"
	case ExplicitBE:
		return "Explicit VR Big Endian"
	default:
		return "Unknown/Default Explicit LE"
	}
}

// Encoding represents the expected encoding of dicom attributes.
type Encoding struct {
	ImplicitVR   bool
	LittleEndian bool
}

func (e Encoding) String() string {
	var implicitness = "ImplicitVR"
	var endian = "LittleEndian"
	if !e.ImplicitVR {
		implicitness = "ExplicitVR"
	}
	if !e.LittleEndian {
		endian = "BigEndian"
	}
	return fmt.Sprintf("%s + %s", implicitness, endian)
}
