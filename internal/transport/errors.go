package transport

import "errors"

// Domain errors for the transport package.
var (
	// ErrNotOpen is returned when an I/O operation is attempted on a
	// closed port.
	ErrNotOpen = errors.New("transport: port not open")

	// ErrAlreadyOpen is returned by Open when the port is already open.
	ErrAlreadyOpen = errors.New("transport: port already open")

	// ErrOpenFailed wraps the device error returned when opening the port.
	ErrOpenFailed = errors.New("transport: open failed")
)
