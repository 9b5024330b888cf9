// Package ipcclient implements the client side of the PINE protocol: it
// frames requests, performs one connection per exchange (the server tears
// the connection down after every reply) and decodes read results.
package ipcclient

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/go-pine/pine/pkg/logflags"
	"github.com/go-pine/pine/pkg/wire"
	"github.com/go-pine/pine/service"
)

// ErrRequestFailed is returned when the server answers with the failure
// status byte. The wire format carries no detail beyond that: an inactive
// machine, a malformed batch and a reply overflow all look the same.
var ErrRequestFailed = errors.New("request failed by server")

// Config configures a Client. The zero value targets the platform default
// endpoint with the default timeout.
type Config struct {
	// Network and Addr select the endpoint; empty values pick the platform
	// defaults from the service package.
	Network string
	Addr    string
	// Timeout bounds the dial and the I/O of each exchange.
	Timeout time.Duration
	// Breaker enables a circuit breaker around exchanges so a tool polling
	// a dead emulator backs off instead of redialing at full rate. Only
	// transport errors count as failures; a StatusFail reply is a working
	// server saying no.
	Breaker bool
}

// Client talks to a running IPC server. It is safe to reuse across requests
// but, like the server, performs them strictly one at a time.
type Client struct {
	network string
	addr    string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     logflags.Logger
}

// NewClient returns a client for the given endpoint.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	c := &Client{
		network: cfg.Network,
		addr:    cfg.Addr,
		timeout: cfg.Timeout,
		log:     logflags.ClientLogger(),
	}
	if c.network == "" {
		c.network = service.DefaultNetwork
	}
	if c.addr == "" {
		c.addr = service.DefaultAddr()
	}
	if c.timeout <= 0 {
		c.timeout = service.DefaultReadTimeout
	}
	if cfg.Breaker {
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name: c.network + "://" + c.addr,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		})
	}
	return c
}

// Exchange sends one raw request frame and returns the raw reply including
// the status byte. Each exchange dials its own connection; the frame is
// written with a single Write because the server performs a single read.
func (c *Client) Exchange(req []byte) ([]byte, error) {
	if c.breaker != nil {
		return c.breaker.Execute(func() ([]byte, error) {
			return c.exchange(req)
		})
	}
	return c.exchange(req)
}

func (c *Client) exchange(req []byte) ([]byte, error) {
	conn, err := net.DialTimeout(c.network, c.addr, c.timeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := conn.Write(req); err != nil {
		return nil, err
	}
	// The server writes the whole reply and closes, so read until EOF.
	reply, err := io.ReadAll(conn)
	if err != nil {
		return nil, err
	}
	if len(reply) == 0 {
		return nil, errors.New("empty reply")
	}
	c.log.WithField("request", len(req)).WithField("reply", len(reply)).Debug("exchange done")
	return reply, nil
}

// Do sends the batch and decodes the reply payload into one value per read
// sub-command, in request order. Write sub-commands produce no value. A
// StatusFail reply surfaces as ErrRequestFailed; note that writes preceding
// the failing sub-command have still been applied by the server.
func (c *Client) Do(b *Batch) ([]uint64, error) {
	req, err := b.Request()
	if err != nil {
		return nil, err
	}
	reply, err := c.Exchange(req)
	if err != nil {
		return nil, err
	}
	if reply[0] != wire.StatusOK {
		return nil, ErrRequestFailed
	}
	return b.decodeReplies(reply)
}

func (c *Client) readOne(op wire.Command, addr uint32) (uint64, error) {
	b := NewBatch()
	b.add(op, addr, 0)
	vals, err := c.Do(b)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

func (c *Client) writeOne(op wire.Command, addr uint32, v uint64) error {
	b := NewBatch()
	b.add(op, addr, v)
	_, err := c.Do(b)
	return err
}

// Read8 reads one byte of guest memory.
func (c *Client) Read8(addr uint32) (uint8, error) {
	v, err := c.readOne(wire.MsgRead8, addr)
	return uint8(v), err
}

// Read16 reads a 16-bit value from guest memory.
func (c *Client) Read16(addr uint32) (uint16, error) {
	v, err := c.readOne(wire.MsgRead16, addr)
	return uint16(v), err
}

// Read32 reads a 32-bit value from guest memory.
func (c *Client) Read32(addr uint32) (uint32, error) {
	v, err := c.readOne(wire.MsgRead32, addr)
	return uint32(v), err
}

// Read64 reads a 64-bit value from guest memory.
func (c *Client) Read64(addr uint32) (uint64, error) {
	return c.readOne(wire.MsgRead64, addr)
}

// Write8 writes one byte of guest memory.
func (c *Client) Write8(addr uint32, v uint8) error {
	return c.writeOne(wire.MsgWrite8, addr, uint64(v))
}

// Write16 writes a 16-bit value to guest memory.
func (c *Client) Write16(addr uint32, v uint16) error {
	return c.writeOne(wire.MsgWrite16, addr, uint64(v))
}

// Write32 writes a 32-bit value to guest memory.
func (c *Client) Write32(addr uint32, v uint32) error {
	return c.writeOne(wire.MsgWrite32, addr, uint64(v))
}

// Write64 writes a 64-bit value to guest memory.
func (c *Client) Write64(addr uint32, v uint64) error {
	return c.writeOne(wire.MsgWrite64, addr, v)
}
