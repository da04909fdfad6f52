package lifecycle

import "errors"

var (
	// ErrSetup marks a failure to acquire a device, a buffer pool or a thread.
	ErrSetup = errors.New("setup failed")
	// ErrIO marks a device failure inside a running loop.
	ErrIO = errors.New("steady-state I/O failed")
)

// Process exit status.
const (
	ExitSuccess = 0
	ExitFailure = 1
)
