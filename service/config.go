package service

import (
	"net"
	"time"

	"github.com/go-pine/pine/pkg/machine"
)

// Default capacities and timeouts used when the corresponding Config field
// is zero. The buffer sizes bound how large one batch can get; they are
// protocol constants in the sense that a client must not assume more.
const (
	DefaultMaxRequestSize = 650000
	DefaultMaxReplySize   = 450000
	DefaultReadTimeout    = 10 * time.Second
)

// Config provides the configuration to expose a machine's memory with an
// IPC server.
type Config struct {
	// Listener is used to serve requests. The server takes ownership and
	// closes it on Stop.
	Listener net.Listener

	// Machine is the memory access surface being exposed. The server is the
	// only goroutine that touches it while running.
	Machine machine.Machine

	// MaxRequestSize is the capacity of the request buffer, i.e. the most
	// bytes one request may carry. Zero selects DefaultMaxRequestSize.
	MaxRequestSize int

	// MaxReplySize is the capacity of the reply buffer. A batch whose read
	// results would overflow it fails at the overflowing sub-command. Zero
	// selects DefaultMaxReplySize.
	MaxReplySize int

	// ReadTimeout bounds the single read performed on each accepted
	// connection. Zero selects DefaultReadTimeout.
	ReadTimeout time.Duration
}
