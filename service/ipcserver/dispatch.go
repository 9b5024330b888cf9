package ipcserver

import (
	"errors"
	"fmt"

	"github.com/go-pine/pine/pkg/wire"
)

// Internal reasons a batch aborts. On the wire they all collapse to the
// single StatusFail byte; they are kept distinct only for logging.
var (
	errShortHeader   = errors.New("truncated MultiCommand header")
	errShortRequest  = errors.New("sub-command runs past the received request bytes")
	errReplyOverflow = errors.New("reply buffer capacity exceeded")
	errBadOpcode     = errors.New("invalid opcode")
)

// dispatch interprets one request and fills in the reply buffer, returning
// the number of reply bytes to send. The first reply byte is always a status
// byte; read results follow it in request order.
//
// On any failure the whole dispatch aborts with a 1-byte StatusFail reply.
// Memory writes applied by sub-commands before the failing one are NOT
// undone: partial application is part of the protocol contract, validation
// is per sub-command but commits are immediate.
func (s *ServerImpl) dispatch(req, ret []byte) int {
	// Every operation needs a running machine; checked once up front so a
	// request against a dead machine costs no parsing at all.
	if !s.machine.Active() {
		ret[0] = wire.StatusFail
		return 1
	}

	batch := 1
	bufCnt := 0
	retCnt := 1 // reply cursor starts past the status byte

	if len(req) > 0 && wire.Command(req[0]) == wire.MsgMultiCommand {
		if len(req) < wire.BatchHeaderSize {
			s.log.WithError(errShortHeader).Debug("request failed")
			ret[0] = wire.StatusFail
			return 1
		}
		batch = int(wire.DecodeU16(req, wire.OpcodeSize))
		bufCnt = wire.BatchHeaderSize
	}

	for i := 0; i < batch; i++ {
		var err error
		bufCnt, retCnt, err = s.execOne(req, ret, bufCnt, retCnt)
		if err != nil {
			s.log.WithError(err).WithField("subcommand", i).Debug("request failed")
			ret[0] = wire.StatusFail
			return 1
		}
	}

	ret[0] = wire.StatusOK
	return retCnt
}

// execOne parses and executes the sub-command at request offset bufCnt,
// appending any read result at reply offset retCnt. It returns the advanced
// cursors; an error aborts the whole batch.
func (s *ServerImpl) execOne(req, ret []byte, bufCnt, retCnt int) (int, int, error) {
	// Opcode and address are common to every operation and no opcode needs
	// less, so their presence is validated before anything is decoded.
	if err := safetyCheck(req, ret, bufCnt, wire.OpcodeSize+wire.AddressSize, retCnt, 0); err != nil {
		return 0, 0, err
	}

	op := wire.Command(req[bufCnt])
	// The address is decoded before the opcode is known to be valid; for an
	// invalid opcode the value is simply discarded.
	addr := wire.DecodeU32(req, bufCnt+wire.OpcodeSize)

	need := op.RequestBytes()
	if need == 0 {
		return 0, 0, fmt.Errorf("%w: %#x", errBadOpcode, byte(op))
	}
	if err := safetyCheck(req, ret, bufCnt, need, retCnt, op.ReplyBytes()); err != nil {
		return 0, 0, err
	}

	val := bufCnt + wire.OpcodeSize + wire.AddressSize
	switch op {
	case wire.MsgRead8:
		wire.EncodeU8(ret, retCnt, s.machine.Read8(addr))
	case wire.MsgRead16:
		wire.EncodeU16(ret, retCnt, s.machine.Read16(addr))
	case wire.MsgRead32:
		wire.EncodeU32(ret, retCnt, s.machine.Read32(addr))
	case wire.MsgRead64:
		wire.EncodeU64(ret, retCnt, s.machine.Read64(addr))
	case wire.MsgWrite8:
		s.machine.Write8(addr, wire.DecodeU8(req, val))
	case wire.MsgWrite16:
		s.machine.Write16(addr, wire.DecodeU16(req, val))
	case wire.MsgWrite32:
		s.machine.Write32(addr, wire.DecodeU32(req, val))
	case wire.MsgWrite64:
		s.machine.Write64(addr, wire.DecodeU64(req, val))
	}
	return bufCnt + need, retCnt + op.ReplyBytes(), nil
}

// safetyCheck validates one sub-command against both cursors: the request
// bytes it consumes must lie within the bytes actually received, and the
// reply bytes it produces must fit the reply buffer. This is the only place
// the protocol's bounds policy lives; the wire codec itself checks nothing.
func safetyCheck(req, ret []byte, bufCnt, reqNeed, retCnt, retNeed int) error {
	if bufCnt+reqNeed > len(req) {
		return errShortRequest
	}
	if retCnt+retNeed > len(ret) {
		return errReplyOverflow
	}
	return nil
}
