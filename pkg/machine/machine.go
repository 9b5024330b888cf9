// Package machine defines the memory access capability the IPC server
// drives, plus a flat RAM implementation of it used by the demo server and
// by tests.
package machine

// Machine is the fixed-width memory surface of a running virtual machine.
// Implementations are assumed synchronous, side-effecting and not safe for
// concurrent use: the IPC server serializes every access on its single
// session goroutine, and the design assumes exactly one server per machine.
type Machine interface {
	// Active reports whether a machine is currently running. While it
	// returns false the server fails every request without interpreting a
	// single byte of it.
	Active() bool

	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Read64(addr uint32) uint64

	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
	Write64(addr uint32, v uint64)
}
