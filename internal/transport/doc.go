// Package transport provides the serial byte-stream link to the gauge.
//
// A Serial wraps a go.bug.st/serial port opened 8N1 without flow control.
// It exposes exactly the operations the gauge protocol needs: open, close,
// is-open, flush input, flush output, write and read-one-line-with-timeout.
//
// Serial is not safe for concurrent transactions; it is owned by a single
// poller for its lifetime. Open and Close may be called from any goroutine.
package transport
