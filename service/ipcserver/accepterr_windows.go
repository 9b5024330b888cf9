//go:build windows

package ipcserver

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isTransientAcceptError reports whether err is on the fixed allow-list of
// recoverable Accept failures. Anything else ends the session loop.
func isTransientAcceptError(err error) bool {
	return errors.Is(err, windows.WSAECONNRESET) ||
		errors.Is(err, windows.WSAEINTR) ||
		errors.Is(err, windows.WSAEINPROGRESS) ||
		errors.Is(err, windows.WSAEWOULDBLOCK) ||
		errors.Is(err, windows.WSAEMFILE)
}
