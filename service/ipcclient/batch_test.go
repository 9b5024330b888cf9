package ipcclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pine/pine/pkg/wire"
)

func TestBatchSingleCommandIsSentBare(t *testing.T) {
	b := NewBatch()
	b.Read32(0x1000)

	req, err := b.Request()
	require.NoError(t, err)
	require.Len(t, req, 5)
	assert.Equal(t, byte(wire.MsgRead32), req[0])
	assert.Equal(t, uint32(0x1000), wire.DecodeU32(req, 1))
}

func TestBatchMultiCommandFraming(t *testing.T) {
	b := NewBatch()
	b.Read8(0x10)
	b.Write8(0x11, 0x05)

	req, err := b.Request()
	require.NoError(t, err)
	require.Len(t, req, wire.BatchHeaderSize+5+6)
	assert.Equal(t, byte(wire.MsgMultiCommand), req[0])
	assert.Equal(t, uint16(2), wire.DecodeU16(req, 1))
	assert.Equal(t, byte(wire.MsgRead8), req[3])
	assert.Equal(t, byte(wire.MsgWrite8), req[8])
	assert.Equal(t, byte(0x05), req[13])
}

func TestBatchWriteOperandEncoding(t *testing.T) {
	b := NewBatch()
	b.Write64(0x2000, 0x0123456789ABCDEF)

	req, err := b.Request()
	require.NoError(t, err)
	require.Len(t, req, 13)
	assert.Equal(t, uint64(0x0123456789ABCDEF), wire.DecodeU64(req, 5))
}

func TestBatchEmptyRequestRejected(t *testing.T) {
	_, err := NewBatch().Request()
	require.Error(t, err)
}

func TestBatchDecodeReplies(t *testing.T) {
	b := NewBatch()
	b.Read8(0x10)
	b.Write32(0x14, 1)
	b.Read16(0x18)

	// StatusOK, the 8-bit result, then the 16-bit result; the write
	// contributes nothing.
	reply := []byte{wire.StatusOK, 0x42, 0xEF, 0xBE}
	vals, err := b.decodeReplies(reply)
	require.NoError(t, err)
	require.Equal(t, []uint64{0x42, 0xBEEF}, vals)

	_, err = b.decodeReplies(reply[:3])
	assert.Error(t, err, "short payload must not decode")

	_, err = b.decodeReplies(append(reply, 0x00))
	assert.Error(t, err, "excess payload must not decode")
}
