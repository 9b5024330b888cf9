package service

import (
	"fmt"
	"net"
	"os"
	"time"
)

// NewLocalListener binds the local debugger endpoint. The zero values select
// the platform default: a unix domain socket at DefaultAddr on unix-like
// systems, loopback TCP on Windows. The dispatcher and the session loop
// never see which one was picked.
func NewLocalListener(network, addr string) (net.Listener, error) {
	if network == "" {
		network = DefaultNetwork
	}
	if addr == "" {
		addr = DefaultAddr()
	}
	if network == "unix" {
		if err := removeStaleSocket(addr); err != nil {
			return nil, err
		}
	}
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("could not bind %s endpoint %s: %v", network, addr, err)
	}
	return ln, nil
}

// removeStaleSocket unlinks a leftover socket file from a previous run so the
// bind does not fail on it. A socket that still answers a dial belongs to a
// live instance and is left alone.
func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err == nil {
		conn.Close()
		return fmt.Errorf("%s is in use by another instance", path)
	}
	os.Remove(path)
	return nil
}
