package machine

// RAM is a Machine backed by a flat little-endian byte array. Addresses wrap
// modulo the configured size, so every access is total: multi-byte accesses
// that straddle the top of the address space wrap around to zero.
//
// RAM exists so the repository is runnable end to end without a real
// emulator; it also backs most of the protocol tests.
type RAM struct {
	mem    []byte
	active bool
}

// NewRAM returns an active RAM of the given size in bytes. Size zero is
// rejected: the wraparound arithmetic needs a non-empty address space.
func NewRAM(size uint32) *RAM {
	if size == 0 {
		panic("machine: RAM size must not be zero")
	}
	return &RAM{mem: make([]byte, size), active: true}
}

// SetActive flips the running state reported by Active. Like the rest of the
// Machine surface it must not be called concurrently with the server.
func (r *RAM) SetActive(active bool) { r.active = active }

func (r *RAM) Active() bool { return r.active }

// Size returns the size of the address space in bytes.
func (r *RAM) Size() uint32 { return uint32(len(r.mem)) }

func (r *RAM) read(addr uint32, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		b := r.mem[int(addr+uint32(i))%len(r.mem)]
		v |= uint64(b) << (8 * i)
	}
	return v
}

func (r *RAM) write(addr uint32, width int, v uint64) {
	for i := 0; i < width; i++ {
		r.mem[int(addr+uint32(i))%len(r.mem)] = byte(v >> (8 * i))
	}
}

func (r *RAM) Read8(addr uint32) uint8   { return uint8(r.read(addr, 1)) }
func (r *RAM) Read16(addr uint32) uint16 { return uint16(r.read(addr, 2)) }
func (r *RAM) Read32(addr uint32) uint32 { return uint32(r.read(addr, 4)) }
func (r *RAM) Read64(addr uint32) uint64 { return r.read(addr, 8) }

func (r *RAM) Write8(addr uint32, v uint8)   { r.write(addr, 1, uint64(v)) }
func (r *RAM) Write16(addr uint32, v uint16) { r.write(addr, 2, uint64(v)) }
func (r *RAM) Write32(addr uint32, v uint32) { r.write(addr, 4, uint64(v)) }
func (r *RAM) Write64(addr uint32, v uint64) { r.write(addr, 8, v) }
