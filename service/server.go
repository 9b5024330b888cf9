package service

// Server exposes a machine's memory over a local socket.
type Server interface {
	// Run starts the session loop. It returns immediately; the loop runs
	// until Stop is called or the listener fails with an unrecoverable
	// error.
	Run() error
	// Stop closes the listening socket and ends the session loop.
	Stop() error
}
