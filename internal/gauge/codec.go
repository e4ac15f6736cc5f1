package gauge

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
)

// Frame delimiters.
const (
	commandStart = '#'
	replyStart   = '*'
	frameEnd     = '\r'
)

// Transport is the byte-stream link the codec talks through.
type Transport interface {
	IsOpen() bool
	ResetInput() error
	ResetOutput() error
	Write(p []byte) error
	ReadLine(timeout time.Duration) ([]byte, error)
}

// Pacing is the settling delay applied around every frame write.
type Pacing struct {
	// Before is slept after the buffers are reset and before the write.
	Before time.Duration

	// After is slept between the write and the read.
	After time.Duration
}

// UniformPacing returns a Pacing with the same delay on both sides.
func UniformPacing(d time.Duration) Pacing {
	return Pacing{Before: d, After: d}
}

// Config configures a Codec.
type Config struct {
	// Address is the gauge's RS-485 address, e.g. "01".
	Address string

	// ReadTimeout bounds the wait for a reply line.
	ReadTimeout time.Duration

	Pacing Pacing

	// Clock runs the settling delays. Defaults to the wall clock.
	Clock clock.Clock
}

// Codec frames commands, runs paced transactions and parses replies for
// one gauge address.
type Codec struct {
	transport   Transport
	address     string
	readTimeout time.Duration
	pacing      Pacing
	clock       clock.Clock
}

// NewCodec creates a Codec speaking to address over t.
func NewCodec(t Transport, cfg Config) *Codec {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Codec{
		transport:   t,
		address:     cfg.Address,
		readTimeout: cfg.ReadTimeout,
		pacing:      cfg.Pacing,
		clock:       clk,
	}
}

// Address returns the gauge address the codec frames for.
func (c *Codec) Address() string {
	return c.address
}

// Frame builds the command frame '#' + address + command + CR.
func Frame(address, command string) []byte {
	b := make([]byte, 0, len(address)+len(command)+2)
	b = append(b, commandStart)
	b = append(b, address...)
	b = append(b, command...)
	return append(b, frameEnd)
}

// ParseReply extracts the pressure from a reply addressed to address.
//
// The reply must begin with '*' + address + ' '. The text after the first
// space, trimmed, must parse as a finite float.
//
// Returns:
//   - float64: Pressure value
//   - error: ErrNoReply, ErrAddressMismatch or ErrInvalidValue
func ParseReply(address, reply string) (float64, error) {
	if reply == "" {
		return 0, ErrNoReply
	}

	prefix := string(replyStart) + address + " "
	if !strings.HasPrefix(reply, prefix) {
		return 0, fmt.Errorf("%w: got %q", ErrAddressMismatch, reply)
	}

	payload := strings.TrimSpace(reply[len(prefix):])
	v, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, payload)
	}
	// Spelled-out infinities parse cleanly, so they are rejected here.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidValue, payload)
	}
	return v, nil
}

// Transact runs one paced, retry-free exchange and returns the reply text
// with surrounding whitespace removed.
//
// Parameters:
//   - command: Command mnemonic, e.g. "RD"
//
// Returns:
//   - string: Trimmed reply, never empty on success
//   - error: ErrPortClosed, ErrTransport wrapping the cause, or ErrNoReply
func (c *Codec) Transact(command string) (string, error) {
	if !c.transport.IsOpen() {
		return "", ErrPortClosed
	}

	if err := c.transport.ResetInput(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if err := c.transport.ResetOutput(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.sleep(c.pacing.Before)
	if err := c.transport.Write(Frame(c.address, command)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	c.sleep(c.pacing.After)

	line, err := c.transport.ReadLine(c.readTimeout)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	reply := strings.TrimSpace(string(line))
	if reply == "" {
		return "", ErrNoReply
	}
	return reply, nil
}

// ExtractValue parses a reply addressed to this codec's gauge.
func (c *Codec) ExtractValue(reply string) (float64, error) {
	return ParseReply(c.address, reply)
}

// Read queries one channel. Every failure is folded into the Result.
func (c *Codec) Read(ch Channel) Result {
	reply, err := c.Transact(ch.Command)
	if err != nil {
		return Failed(err)
	}
	v, err := c.ExtractValue(reply)
	if err != nil {
		return Failed(err)
	}
	return Valid(v)
}

func (c *Codec) sleep(d time.Duration) {
	if d > 0 {
		c.clock.Sleep(d)
	}
}
