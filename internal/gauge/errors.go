package gauge

import "errors"

// Failure reasons carried by a Result.
var (
	// ErrPortClosed is returned when a transaction is attempted while the
	// transport is not open.
	ErrPortClosed = errors.New("gauge: port closed")

	// ErrTransport wraps a flush, write or read failure of the transport.
	ErrTransport = errors.New("gauge: transport failure")

	// ErrNoReply is returned when the read timed out with nothing received.
	ErrNoReply = errors.New("gauge: no reply")

	// ErrAddressMismatch is returned when a reply does not start with
	// '*' + address + ' '.
	ErrAddressMismatch = errors.New("gauge: reply address mismatch")

	// ErrInvalidValue is returned when the reply payload is not a finite
	// decimal number (for example an error token from the controller).
	ErrInvalidValue = errors.New("gauge: invalid value")
)
