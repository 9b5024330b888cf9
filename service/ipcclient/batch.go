package ipcclient

import (
	"errors"
	"math"

	"github.com/go-pine/pine/pkg/wire"
)

// Batch accumulates sub-commands into one request frame. A batch holding a
// single sub-command is sent bare; anything else is framed under a
// MultiCommand header. Sub-commands execute on the server strictly in the
// order they were added.
type Batch struct {
	ops []wire.Command
	buf []byte
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Len returns the number of sub-commands added so far.
func (b *Batch) Len() int { return len(b.ops) }

func (b *Batch) add(op wire.Command, addr uint32, val uint64) {
	off := len(b.buf)
	b.buf = append(b.buf, make([]byte, op.RequestBytes())...)
	b.buf[off] = byte(op)
	wire.EncodeU32(b.buf, off+wire.OpcodeSize, addr)
	if op.IsWrite() {
		voff := off + wire.OpcodeSize + wire.AddressSize
		switch op.Width() {
		case 1:
			wire.EncodeU8(b.buf, voff, uint8(val))
		case 2:
			wire.EncodeU16(b.buf, voff, uint16(val))
		case 4:
			wire.EncodeU32(b.buf, voff, uint32(val))
		case 8:
			wire.EncodeU64(b.buf, voff, val)
		}
	}
	b.ops = append(b.ops, op)
}

func (b *Batch) Read8(addr uint32)  { b.add(wire.MsgRead8, addr, 0) }
func (b *Batch) Read16(addr uint32) { b.add(wire.MsgRead16, addr, 0) }
func (b *Batch) Read32(addr uint32) { b.add(wire.MsgRead32, addr, 0) }
func (b *Batch) Read64(addr uint32) { b.add(wire.MsgRead64, addr, 0) }

func (b *Batch) Write8(addr uint32, v uint8)   { b.add(wire.MsgWrite8, addr, uint64(v)) }
func (b *Batch) Write16(addr uint32, v uint16) { b.add(wire.MsgWrite16, addr, uint64(v)) }
func (b *Batch) Write32(addr uint32, v uint32) { b.add(wire.MsgWrite32, addr, uint64(v)) }
func (b *Batch) Write64(addr uint32, v uint64) { b.add(wire.MsgWrite64, addr, v) }

// Request returns the encoded request frame.
func (b *Batch) Request() ([]byte, error) {
	if len(b.ops) == 0 {
		return nil, errors.New("empty batch")
	}
	if len(b.ops) == 1 {
		return b.buf, nil
	}
	if len(b.ops) > math.MaxUint16 {
		return nil, errors.New("batch holds more than 65535 sub-commands")
	}
	req := make([]byte, wire.BatchHeaderSize, wire.BatchHeaderSize+len(b.buf))
	req[0] = byte(wire.MsgMultiCommand)
	wire.EncodeU16(req, wire.OpcodeSize, uint16(len(b.ops)))
	return append(req, b.buf...), nil
}

// decodeReplies splits a successful reply's payload back into one value per
// read sub-command.
func (b *Batch) decodeReplies(reply []byte) ([]uint64, error) {
	var vals []uint64
	off := 1 // skip the status byte
	for _, op := range b.ops {
		n := op.ReplyBytes()
		if n == 0 {
			continue
		}
		if off+n > len(reply) {
			return nil, errors.New("reply payload shorter than the batch promised")
		}
		switch n {
		case 1:
			vals = append(vals, uint64(wire.DecodeU8(reply, off)))
		case 2:
			vals = append(vals, uint64(wire.DecodeU16(reply, off)))
		case 4:
			vals = append(vals, uint64(wire.DecodeU32(reply, off)))
		case 8:
			vals = append(vals, wire.DecodeU64(reply, off))
		}
		off += n
	}
	if off != len(reply) {
		return nil, errors.New("reply payload longer than the batch promised")
	}
	return vals, nil
}
