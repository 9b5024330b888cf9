//go:build !windows

package service

import (
	"os"
	"path/filepath"
)

// DefaultNetwork is the transport used when none is requested.
const DefaultNetwork = "unix"

// DefaultAddr returns the default endpoint address: a socket in the user's
// runtime directory, falling back to /tmp.
func DefaultAddr() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pine.sock")
	}
	return filepath.Join(os.TempDir(), "pine.sock")
}
