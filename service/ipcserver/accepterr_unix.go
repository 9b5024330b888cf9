//go:build !windows

package ipcserver

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isTransientAcceptError reports whether err is on the fixed allow-list of
// recoverable Accept failures: aborted handshakes, signal interruption,
// would-block conditions and descriptor exhaustion. Anything else ends the
// session loop.
func isTransientAcceptError(err error) bool {
	return errors.Is(err, unix.ECONNABORTED) ||
		errors.Is(err, unix.EINTR) ||
		errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK) ||
		errors.Is(err, unix.EMFILE)
}
