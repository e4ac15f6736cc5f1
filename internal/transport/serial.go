package transport

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

// readChunk is the size of a single device read.
const readChunk = 64

// Port is the subset of serial.Port used by Serial.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ResetInputBuffer() error
	ResetOutputBuffer() error
	SetReadTimeout(t time.Duration) error
	Close() error
}

// OpenFunc opens the named device. The default opens a go.bug.st/serial port.
type OpenFunc func(name string, mode *serial.Mode) (Port, error)

// Config describes the serial device.
type Config struct {
	// Port is the device path (e.g., "/dev/ttyUSB0").
	Port string

	// BaudRate must match the instrument.
	BaudRate int
}

// Option configures a Serial.
type Option func(*Serial)

// WithOpener replaces the device opener. Tests use it to supply a fake port.
func WithOpener(fn OpenFunc) Option {
	return func(s *Serial) {
		s.open = fn
	}
}

// Serial is a line-oriented view of a serial device.
type Serial struct {
	cfg  Config
	open OpenFunc

	mu   sync.Mutex
	port Port

	// pending holds bytes read past the end of the previous line.
	pending []byte
}

// New creates a Serial for cfg. No I/O happens until Open.
func New(cfg Config, opts ...Option) *Serial {
	s := &Serial{
		cfg:  cfg,
		open: openSerial,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func openSerial(name string, mode *serial.Mode) (Port, error) {
	return serial.Open(name, mode)
}

// Open opens the device at the configured baud rate, 8 data bits, no
// parity, one stop bit.
//
// Returns:
//   - error: ErrAlreadyOpen, or ErrOpenFailed wrapping the device error
func (s *Serial) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port != nil {
		return ErrAlreadyOpen
	}

	mode := &serial.Mode{
		BaudRate: s.cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := s.open(s.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpenFailed, s.cfg.Port, err)
	}

	s.port = port
	s.pending = nil
	return nil
}

// Close closes the device. Closing a closed Serial is a no-op.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.pending = nil
	if err != nil {
		return fmt.Errorf("closing %s: %w", s.cfg.Port, err)
	}
	return nil
}

// IsOpen reports whether the device is open.
func (s *Serial) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

// Name returns the configured device path.
func (s *Serial) Name() string {
	return s.cfg.Port
}

// ResetInput discards bytes received but not yet read.
func (s *Serial) ResetInput() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return ErrNotOpen
	}
	s.pending = nil
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("resetting input buffer: %w", err)
	}
	return nil
}

// ResetOutput discards bytes written but not yet transmitted.
func (s *Serial) ResetOutput() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return ErrNotOpen
	}
	if err := s.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("resetting output buffer: %w", err)
	}
	return nil
}

// Write sends every byte of p.
func (s *Serial) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return ErrNotOpen
	}
	for len(p) > 0 {
		n, err := s.port.Write(p)
		if err != nil {
			return fmt.Errorf("writing to %s: %w", s.cfg.Port, err)
		}
		if n == 0 {
			return fmt.Errorf("writing to %s: %w", s.cfg.Port, io.ErrShortWrite)
		}
		p = p[n:]
	}
	return nil
}

// ReadLine reads until a CR or LF terminator or until timeout elapses.
// The terminator is not returned. On timeout the bytes received so far are
// returned with a nil error; an empty result means the device said nothing.
//
// Parameters:
//   - timeout: Upper bound for the whole line
//
// Returns:
//   - []byte: Line without terminator, possibly empty
//   - error: ErrNotOpen or a device read error
func (s *Serial) ReadLine(timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil, ErrNotOpen
	}

	var line []byte
	buf := make([]byte, readChunk)
	deadline := time.Now().Add(timeout)

	for {
		if i := bytes.IndexAny(s.pending, "\r\n"); i >= 0 {
			line = append(line, s.pending[:i]...)
			s.pending = s.pending[i+1:]
			if len(line) > 0 {
				return line, nil
			}
			// Skip the LF of a CRLF pair or a stray blank line.
			continue
		}
		line = append(line, s.pending...)
		s.pending = nil

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return line, nil
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return nil, fmt.Errorf("setting read timeout: %w", err)
		}

		n, err := s.port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading from %s: %w", s.cfg.Port, err)
		}
		if n == 0 {
			// go.bug.st/serial reports a timeout as a zero-length read.
			return line, nil
		}
		s.pending = append(s.pending, buf[:n]...)
	}
}
