//go:build windows

package service

// DefaultNetwork is the transport used when none is requested. Windows gets
// loopback TCP instead of a unix domain socket.
const DefaultNetwork = "tcp"

// DefaultAddr returns the default endpoint address.
func DefaultAddr() string {
	return "127.0.0.1:28011"
}
