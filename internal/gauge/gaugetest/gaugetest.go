// Package gaugetest provides a scripted gauge transport and a non-blocking
// mock clock for tests of code built on package gauge.
package gaugetest

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ErrScriptExhausted is returned by ReadLine when no reply is scripted.
var ErrScriptExhausted = errors.New("gaugetest: no scripted reply")

// Reply is one scripted answer to ReadLine.
type Reply struct {
	Line string
	Err  error
}

// Timeout is a Reply that models a read timeout with nothing received.
var Timeout = Reply{}

// Line returns a Reply carrying s.
func Line(s string) Reply {
	return Reply{Line: s}
}

// Event is one recorded transport call.
type Event struct {
	Op   string // open, close, reset-in, reset-out, write, read
	Data string // frame for writes, reply for reads
	At   time.Time
}

// Transport is a scripted in-memory transport. It satisfies both the gauge
// codec transport and the poller's open/close requirements.
type Transport struct {
	// Clock stamps recorded events. Optional.
	Clock clock.Clock

	// OpenErr, when set, is returned by Open.
	OpenErr error

	// ResetErr and WriteErr, when set, are returned by the matching calls.
	ResetErr error
	WriteErr error

	mu      sync.Mutex
	open    bool
	replies []Reply
	events  []Event
	opens   int
	closes  int
}

// NewTransport returns a closed Transport that will answer reads with
// replies in order.
func NewTransport(replies ...Reply) *Transport {
	return &Transport{replies: replies}
}

// Script appends replies to the queue.
func (t *Transport) Script(replies ...Reply) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies = append(t.replies, replies...)
}

func (t *Transport) record(op, data string) {
	var at time.Time
	if t.Clock != nil {
		at = t.Clock.Now()
	}
	t.events = append(t.events, Event{Op: op, Data: data, At: at})
}

// Open marks the transport open unless OpenErr is set.
func (t *Transport) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opens++
	t.record("open", "")
	if t.OpenErr != nil {
		return t.OpenErr
	}
	t.open = true
	return nil
}

// Close marks the transport closed.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closes++
	t.record("close", "")
	t.open = false
	return nil
}

// IsOpen reports whether Open succeeded and Close has not been called.
func (t *Transport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// SetOpen forces the open state without recording an event.
func (t *Transport) SetOpen(open bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = open
}

// ResetInput records the call.
func (t *Transport) ResetInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("reset-in", "")
	return t.ResetErr
}

// ResetOutput records the call.
func (t *Transport) ResetOutput() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("reset-out", "")
	return t.ResetErr
}

// Write records the frame.
func (t *Transport) Write(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("write", string(p))
	return t.WriteErr
}

// ReadLine pops the next scripted reply.
func (t *Transport) ReadLine(_ time.Duration) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.replies) == 0 {
		t.record("read", "")
		return nil, ErrScriptExhausted
	}
	r := t.replies[0]
	t.replies = t.replies[1:]
	t.record("read", r.Line)
	if r.Err != nil {
		return nil, r.Err
	}
	return []byte(r.Line), nil
}

// Events returns a copy of the recorded calls.
func (t *Transport) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Event(nil), t.events...)
}

// Writes returns the frames written, in order.
func (t *Transport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var frames []string
	for _, e := range t.events {
		if e.Op == "write" {
			frames = append(frames, e.Data)
		}
	}
	return frames
}

// Opens returns how many times Open was called.
func (t *Transport) Opens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opens
}

// Closes returns how many times Close was called.
func (t *Transport) Closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes
}

// Clock is a clock.Mock whose Sleep and After advance virtual time instead
// of blocking, so single-goroutine code under test runs to completion.
type Clock struct {
	*clock.Mock
}

// NewClock returns a Clock set to start.
func NewClock(start time.Time) *Clock {
	m := clock.NewMock()
	m.Set(start)
	return &Clock{Mock: m}
}

// Sleep advances the mock by d.
func (c *Clock) Sleep(d time.Duration) {
	c.Add(d)
}

// After advances the mock by d and returns the already fired channel.
func (c *Clock) After(d time.Duration) <-chan time.Time {
	ch := c.Mock.After(d)
	c.Add(d)
	return ch
}
