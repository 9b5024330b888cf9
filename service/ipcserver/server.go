// Package ipcserver implements the PINE IPC server: a single-goroutine
// session loop that performs exactly one read/dispatch/write exchange per
// accepted connection, backed by the bounds-checked command dispatcher in
// dispatch.go.
package ipcserver

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/go-pine/pine/pkg/logflags"
	"github.com/go-pine/pine/pkg/machine"
	"github.com/go-pine/pine/service"
)

// ServerImpl serializes every request/response exchange over one listening
// endpoint. The request and reply buffers are allocated once in Run and
// reused across connections, so neither the server nor the machine behind it
// may be shared with another session loop.
type ServerImpl struct {
	// config is all the information necessary to serve the machine.
	config *service.Config
	// listener accepts debugger connections, one at a time.
	listener net.Listener
	// machine is the memory access surface being exposed.
	machine machine.Machine
	// stopChan is closed to tell the accept loop an Accept failure is an
	// intentional shutdown.
	stopChan chan struct{}
	// stopped is closed by the accept loop when it exits.
	stopped chan struct{}
	// stopOnce makes Stop idempotent; stopErr carries the close error of
	// the first call to every caller.
	stopOnce sync.Once
	stopErr  error

	log logflags.Logger

	reqBuf []byte
	retBuf []byte
}

// NewServer creates a new IPC server. Config.Listener and Config.Machine
// must be set; zero sizes and timeouts select the service defaults.
func NewServer(config *service.Config) *ServerImpl {
	if config.Listener == nil {
		panic("config.Listener is nil")
	}
	if config.Machine == nil {
		panic("config.Machine is nil")
	}
	if config.MaxRequestSize <= 0 {
		config.MaxRequestSize = service.DefaultMaxRequestSize
	}
	if config.MaxReplySize <= 0 {
		config.MaxReplySize = service.DefaultMaxReplySize
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = service.DefaultReadTimeout
	}
	return &ServerImpl{
		config:   config,
		listener: config.Listener,
		machine:  config.Machine,
		stopChan: make(chan struct{}),
		stopped:  make(chan struct{}),
		log:      logflags.ServerLogger(),
	}
}

// Run allocates the request and reply buffers and starts the session loop in
// a goroutine. The loop serves connections serially until Stop is called or
// Accept fails with an error outside the transient allow-list.
func (s *ServerImpl) Run() error {
	s.reqBuf = make([]byte, s.config.MaxRequestSize)
	s.retBuf = make([]byte, s.config.MaxReplySize)
	s.log.WithField("addr", s.listener.Addr()).Info("listening")

	go func() {
		defer close(s.stopped)
		defer s.listener.Close()
		for {
			c, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.stopChan:
					// We were supposed to exit, do nothing and return
					return
				default:
				}
				if isTransientAcceptError(err) {
					s.log.WithError(err).Debug("recoverable accept error")
					continue
				}
				s.log.WithError(err).Error("unrecoverable accept error, shutting down")
				return
			}
			s.serveConn(c)
		}
	}()
	return nil
}

// serveConn performs the single exchange of one connection: one bounded
// read, one dispatch, one write. The connection is always closed before the
// next accept, whatever happens in between.
func (s *ServerImpl) serveConn(c net.Conn) {
	defer c.Close()
	if err := c.SetReadDeadline(time.Now().Add(s.config.ReadTimeout)); err != nil {
		// The exchange still proceeds; it is just no longer bounded by the
		// read timeout.
		s.log.WithError(err).Debug("could not set read deadline")
	}

	n, err := c.Read(s.reqBuf)
	if err != nil && err != io.EOF {
		// No reply is owed to a peer we could not read from.
		s.log.WithError(err).Debug("dropping connection: read failed")
		return
	}

	// A peer that closed its write side cleanly produced a zero byte
	// request; it is still dispatched and fails inside the dispatcher.
	retLen := s.dispatch(s.reqBuf[:n], s.retBuf)
	if _, err := c.Write(s.retBuf[:retLen]); err != nil {
		// The connection is torn down after one exchange regardless, so a
		// failed reply write is not retried or reported to the client.
		s.log.WithError(err).Debug("reply write failed")
	}
}

// Stop closes the listening socket and ends the session loop. Termination is
// cooperative: an exchange already in progress finishes first, so Stop can
// block for up to one read timeout. Stop is idempotent; every call waits for
// the loop to exit and returns the close error of the first.
func (s *ServerImpl) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.stopErr = s.listener.Close()
		<-s.stopped
		s.log.Info("stopped")
	})
	return s.stopErr
}
