package poller

import "errors"

// Domain errors for the poller package.
var (
	// ErrTransportOpen wraps the error returned when the transport fails
	// to open. The run never enters Running.
	ErrTransportOpen = errors.New("poller: transport open failed")

	// ErrAlreadyStarted is returned when Run is called more than once.
	ErrAlreadyStarted = errors.New("poller: already started")

	// ErrInvalidLimit is returned for a negative tick limit.
	ErrInvalidLimit = errors.New("poller: invalid tick limit")

	// ErrSinkPanic is counted when a sink panics while writing.
	ErrSinkPanic = errors.New("poller: sink panicked")
)
