package dcmtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementPadding(t *testing.T) {
	t.Parallel()
	b := NewBuilder().SetImplicitVR(false).String(0x0010, 0x0020, "LO", "ABC")
	assert.Equal(t, []byte{
		0x10, 0x00, 0x20, 0x00, // (0010,0020) Tag
		0x4C, 0x4F, // VR: LO
		0x04, 0x00, // Length: 4 bytes
		0x41, 0x42, 0x43, 0x20, // Data: "ABC" + space
	}, b.Bytes())

	b = NewBuilder().SetImplicitVR(false).String(0x0002, 0x0010, "UI", "1.2.3")
	assert.Equal(t, byte(0x00), b.Bytes()[b.Len()-1], "UIDs are padded with NULL")
}

func TestHeaderLongLength(t *testing.T) {
	t.Parallel()
	b := NewBuilder().SetImplicitVR(false).Header(0x7FE0, 0x0010, "OW", UndefinedLength)
	assert.Equal(t, []byte{
		0xE0, 0x7F, 0x10, 0x00, // (7FE0,0010) Tag
		0x4F, 0x57, // VR: OW
		0x00, 0x00, // Reserved
		0xFF, 0xFF, 0xFF, 0xFF, // Length: undefined
	}, b.Bytes())
}

func TestBigEndian(t *testing.T) {
	t.Parallel()
	b := NewBuilder().SetTransferSyntax(ExplicitBE).US(0x0028, 0x0010, 512).SequenceDelimiter()
	assert.Equal(t, []byte{
		0x00, 0x28, 0x00, 0x10, // (0028,0010) Tag
		0x55, 0x53, // VR: US
		0x00, 0x02, // Length: 2 bytes
		0x02, 0x00, // Data: 512
		0xFF, 0xFE, 0xE0, 0xDD, // (FFFE,E0DD) Tag
		0x00, 0x00, 0x00, 0x00, // Length: 0
	}, b.Bytes())
}

func TestMetaIsExplicitLittleEndian(t *testing.T) {
	t.Parallel()
	b := NewBuilder().SetTransferSyntax(ExplicitBE).Preamble().Meta(ImplicitLE)
	assert.Equal(t, 132+8+18, b.Len())
	assert.Equal(t, []byte("DICM"), b.Bytes()[128:132])
	assert.Equal(t, []byte{0x02, 0x00, 0x10, 0x00, 0x55, 0x49, 0x12, 0x00}, b.Bytes()[132:140])

	b.String(0x0010, 0x0010, "PN", "JOHN")
	assert.Equal(t, []byte{
		0x10, 0x00, 0x10, 0x00, // (0010,0010) Tag
		0x04, 0x00, 0x00, 0x00, // Length: 4 bytes
	}, b.Bytes()[158:166], "switched to implicit VR for the data set")
}

func TestHeaderShortLengthOverflow(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		NewBuilder().SetImplicitVR(false).Header(0x0010, 0x0010, "PN", 0x10000)
	})
}
