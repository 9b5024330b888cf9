// Package wire defines the PINE request/reply framing: the opcode set, the
// reply status bytes and the fixed-endian codec shared by the server and the
// client. Everything here is pure; bounds checking is the caller's job.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Command is the 1-byte opcode that selects which memory operation a
// sub-command performs. MsgMultiCommand is a meta-tag: it never appears
// inside a batch, only as the first byte of a whole request.
type Command byte

const (
	MsgRead8 Command = iota
	MsgRead16
	MsgRead32
	MsgRead64
	MsgWrite8
	MsgWrite16
	MsgWrite32
	MsgWrite64
	MsgMultiCommand
)

// Reply status bytes. A reply is always at least one byte long and the first
// byte is one of these.
const (
	StatusOK   byte = 0x00
	StatusFail byte = 0xFF
)

// Fixed field sizes of the request format.
const (
	OpcodeSize  = 1
	AddressSize = 4

	// BatchHeaderSize is the size of the MultiCommand header: the tag byte
	// followed by a 16-bit sub-command count. The first sub-command starts
	// immediately after it.
	BatchHeaderSize = 3
)

func (c Command) String() string {
	switch c {
	case MsgRead8:
		return "Read8"
	case MsgRead16:
		return "Read16"
	case MsgRead32:
		return "Read32"
	case MsgRead64:
		return "Read64"
	case MsgWrite8:
		return "Write8"
	case MsgWrite16:
		return "Write16"
	case MsgWrite32:
		return "Write32"
	case MsgWrite64:
		return "Write64"
	case MsgMultiCommand:
		return "MultiCommand"
	}
	return fmt.Sprintf("Command(%d)", byte(c))
}

// IsRead reports whether c is one of the four read opcodes.
func (c Command) IsRead() bool { return c <= MsgRead64 }

// IsWrite reports whether c is one of the four write opcodes.
func (c Command) IsWrite() bool { return c >= MsgWrite8 && c <= MsgWrite64 }

// Width returns the operand width of c in bytes, or 0 for opcodes that carry
// no operand.
func (c Command) Width() int {
	switch c {
	case MsgRead8, MsgWrite8:
		return 1
	case MsgRead16, MsgWrite16:
		return 2
	case MsgRead32, MsgWrite32:
		return 4
	case MsgRead64, MsgWrite64:
		return 8
	}
	return 0
}

// RequestBytes returns the number of request bytes one sub-command with
// opcode c occupies, or 0 for an opcode that is not a memory operation.
// Reads are opcode+address; writes additionally carry their operand.
func (c Command) RequestBytes() int {
	switch {
	case c.IsRead():
		return OpcodeSize + AddressSize
	case c.IsWrite():
		return OpcodeSize + AddressSize + c.Width()
	}
	return 0
}

// ReplyBytes returns the number of reply payload bytes one sub-command with
// opcode c produces. Only reads contribute to the reply.
func (c Command) ReplyBytes() int {
	if c.IsRead() {
		return c.Width()
	}
	return 0
}

// All multi-byte fields are little-endian on both sides of the connection.
// The decode/encode helpers below trust their caller completely: offsets must
// already be validated, keeping the bounds-checking policy in one place (the
// dispatcher) instead of scattered across call sites.

func DecodeU8(buf []byte, off int) uint8 { return buf[off] }

func DecodeU16(buf []byte, off int) uint16 { return binary.LittleEndian.Uint16(buf[off:]) }

func DecodeU32(buf []byte, off int) uint32 { return binary.LittleEndian.Uint32(buf[off:]) }

func DecodeU64(buf []byte, off int) uint64 { return binary.LittleEndian.Uint64(buf[off:]) }

func EncodeU8(buf []byte, off int, v uint8) { buf[off] = v }

func EncodeU16(buf []byte, off int, v uint16) { binary.LittleEndian.PutUint16(buf[off:], v) }

func EncodeU32(buf []byte, off int, v uint32) { binary.LittleEndian.PutUint32(buf[off:], v) }

func EncodeU64(buf []byte, off int, v uint64) { binary.LittleEndian.PutUint64(buf[off:], v) }
