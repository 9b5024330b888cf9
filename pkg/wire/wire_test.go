package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandMetadata(t *testing.T) {
	for _, tc := range []struct {
		op       Command
		width    int
		reqBytes int
		repBytes int
		isRead   bool
		isWrite  bool
	}{
		{MsgRead8, 1, 5, 1, true, false},
		{MsgRead16, 2, 5, 2, true, false},
		{MsgRead32, 4, 5, 4, true, false},
		{MsgRead64, 8, 5, 8, true, false},
		{MsgWrite8, 1, 6, 0, false, true},
		{MsgWrite16, 2, 7, 0, false, true},
		{MsgWrite32, 4, 9, 0, false, true},
		{MsgWrite64, 8, 13, 0, false, true},
		{MsgMultiCommand, 0, 0, 0, false, false},
		{Command(0xFE), 0, 0, 0, false, false},
	} {
		t.Run(tc.op.String(), func(t *testing.T) {
			assert.Equal(t, tc.width, tc.op.Width())
			assert.Equal(t, tc.reqBytes, tc.op.RequestBytes())
			assert.Equal(t, tc.repBytes, tc.op.ReplyBytes())
			assert.Equal(t, tc.isRead, tc.op.IsRead())
			assert.Equal(t, tc.isWrite, tc.op.IsWrite())
		})
	}
}

func TestCodecByteOrder(t *testing.T) {
	// The protocol is little-endian on the wire; spelled out byte by byte
	// here because an endianness mismatch would not error, just silently
	// break interoperability.
	buf := make([]byte, 8)

	EncodeU32(buf, 0, 0xDEADBEEF)
	require.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, buf[:4])
	require.Equal(t, uint32(0xDEADBEEF), DecodeU32(buf, 0))

	EncodeU16(buf, 0, 0xBEEF)
	require.Equal(t, []byte{0xEF, 0xBE}, buf[:2])
	require.Equal(t, uint16(0xBEEF), DecodeU16(buf, 0))

	EncodeU64(buf, 0, 0x0123456789ABCDEF)
	require.Equal(t, []byte{0xEF, 0xCD, 0xAB, 0x89, 0x67, 0x45, 0x23, 0x01}, buf)
	require.Equal(t, uint64(0x0123456789ABCDEF), DecodeU64(buf, 0))
}

func TestCodecAtOffset(t *testing.T) {
	buf := make([]byte, 16)
	EncodeU32(buf, 5, 0xCAFEBABE)
	assert.Equal(t, uint32(0xCAFEBABE), DecodeU32(buf, 5))
	assert.Equal(t, byte(0), buf[4], "bytes before the offset are untouched")
	assert.Equal(t, byte(0), buf[9], "bytes after the field are untouched")
}
