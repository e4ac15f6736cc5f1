package poller

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/nerrad567/vacuum-logger/internal/gauge"
	"github.com/nerrad567/vacuum-logger/internal/infrastructure/logging"
)

// sinkTimeout bounds delivery of one reading to all sinks.
const sinkTimeout = 30 * time.Second

// Transport is the gauge link the poller owns for the length of a run.
type Transport interface {
	Open() error
	Close() error
}

// ChannelReader reads one gauge channel. *gauge.Codec implements it.
type ChannelReader interface {
	Read(ch gauge.Channel) gauge.Result
}

// ReadingWriter consumes readings.
type ReadingWriter interface {
	WriteReading(ctx context.Context, r gauge.Reading) error
}

// Sink is a named ReadingWriter. The name keys its error count in Status.
type Sink struct {
	Name   string
	Writer ReadingWriter
}

// Options configures a Poller.
type Options struct {
	Transport Transport
	Codec     ChannelReader

	// Sinks receive every reading, in order.
	Sinks []Sink

	// Interval is the pause between ticks.
	Interval time.Duration

	Policy StopPolicy

	// RunID tags the status snapshot. Optional.
	RunID string

	// Clock defaults to the wall clock.
	Clock clock.Clock

	// Logger defaults to a discarding logger.
	Logger *logging.Logger
}

// Poller runs the acquisition loop.
type Poller struct {
	transport Transport
	codec     ChannelReader
	sinks     []Sink
	interval  time.Duration
	policy    StopPolicy
	runID     string
	clock     clock.Clock
	logger    *logging.Logger

	mu              sync.RWMutex
	state           State
	iterations      int
	startedAt       time.Time
	last            *gauge.Reading
	channelFailures map[string]int
	sinkErrors      map[string]int
}

// New creates an idle Poller.
func New(opts Options) *Poller {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	p := &Poller{
		transport:       opts.Transport,
		codec:           opts.Codec,
		sinks:           opts.Sinks,
		interval:        opts.Interval,
		policy:          opts.Policy,
		runID:           opts.RunID,
		clock:           clk,
		logger:          logger.With("component", "poller"),
		channelFailures: make(map[string]int),
		sinkErrors:      make(map[string]int),
	}
	for _, s := range p.sinks {
		p.sinkErrors[s.Name] = 0
	}
	for _, ch := range gauge.Channels() {
		p.channelFailures[ch.Name] = 0
	}
	return p
}

// Run opens the transport and polls until the policy is exhausted or ctx
// is cancelled. The transport is closed before Run returns.
//
// Cancellation is observed at tick boundaries and during the inter-tick
// pause; a tick in progress always completes and reaches every sink. Sinks
// are called with a context that keeps ctx's values but not its
// cancellation, bounded by sinkTimeout.
//
// Returns:
//   - error: nil on a normal stop, ErrTransportOpen if the transport could
//     not be opened, ErrAlreadyStarted on a second call
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	// Claimed under the lock so a concurrent Run sees a non-idle poller.
	p.state = StateRunning
	p.mu.Unlock()

	if err := p.transport.Open(); err != nil {
		p.setState(StateStopped)
		return fmt.Errorf("%w: %w", ErrTransportOpen, err)
	}
	defer p.stop()

	start := p.clock.Now()
	p.mu.Lock()
	p.startedAt = start
	p.mu.Unlock()

	p.logger.Info("polling started",
		"policy", p.policy.String(),
		"interval", p.interval,
	)

	for iteration := 0; !p.policy.Exhausted(iteration) && ctx.Err() == nil; {
		reading := p.tick(iteration, start)
		// A stop requested during the triplet must not cost this tick its
		// record, so sinks get a context detached from ctx's cancellation.
		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
		p.deliver(deliverCtx, reading)
		cancel()
		p.logReading(reading)

		iteration++
		p.mu.Lock()
		p.iterations = iteration
		p.last = &reading
		p.mu.Unlock()

		if p.policy.Exhausted(iteration) {
			break
		}
		p.pause(ctx)
	}

	return nil
}

// tick reads every channel once, in poll order. The reading is stamped
// when the triplet completes.
func (p *Poller) tick(iteration int, start time.Time) gauge.Reading {
	reading := gauge.Reading{Iteration: iteration}

	reading.Ion = p.codec.Read(gauge.Ion)
	reading.CG1 = p.codec.Read(gauge.CG1)
	reading.CG2 = p.codec.Read(gauge.CG2)

	now := p.clock.Now()
	reading.Elapsed = now.Sub(start)
	reading.Time = now

	p.mu.Lock()
	for _, name := range reading.Failures() {
		p.channelFailures[name]++
	}
	p.mu.Unlock()

	return reading
}

// deliver hands the reading to every sink. A failing or panicking sink is
// logged and counted, and the remaining sinks still run.
func (p *Poller) deliver(ctx context.Context, r gauge.Reading) {
	for _, s := range p.sinks {
		if err := p.write(ctx, s, r); err != nil {
			p.logger.Error("sink write failed",
				"sink", s.Name,
				"iteration", r.Iteration,
				"error", err,
			)
			p.mu.Lock()
			p.sinkErrors[s.Name]++
			p.mu.Unlock()
		}
	}
}

func (p *Poller) write(ctx context.Context, s Sink, r gauge.Reading) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrSinkPanic, rec)
		}
	}()
	return s.Writer.WriteReading(ctx, r)
}

// logReading emits the per-tick status line.
func (p *Poller) logReading(r gauge.Reading) {
	attrs := []any{
		"iteration", r.Iteration,
		"elapsed_s", r.ElapsedSeconds(),
	}
	for _, ch := range gauge.Channels() {
		res := r.Result(ch)
		if res.OK() {
			attrs = append(attrs, ch.Name, res.Value)
		} else {
			attrs = append(attrs, ch.Name, res.Err.Error())
		}
	}

	failed := r.Failures()
	if len(failed) == 0 {
		p.logger.Info("pressures read (Torr)", attrs...)
		return
	}
	attrs = append(attrs, "failed", failed)
	p.logger.Warn("pressure read incomplete", attrs...)
}

// pause waits one interval or until ctx is cancelled.
func (p *Poller) pause(ctx context.Context) {
	if p.interval <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-p.clock.After(p.interval):
	}
}

func (p *Poller) stop() {
	if err := p.transport.Close(); err != nil {
		p.logger.Warn("closing transport", "error", err)
	}
	p.setState(StateStopped)

	p.mu.RLock()
	iterations := p.iterations
	p.mu.RUnlock()
	p.logger.Info("polling stopped", "iterations", iterations)
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Status returns a snapshot of the poller. Safe for concurrent use.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := Status{
		State:           p.state.String(),
		RunID:           p.runID,
		Policy:          p.policy.String(),
		Interval:        p.interval.Seconds(),
		Iterations:      p.iterations,
		ChannelFailures: maps.Clone(p.channelFailures),
		SinkErrors:      maps.Clone(p.sinkErrors),
	}
	if !p.startedAt.IsZero() {
		started := p.startedAt
		st.StartedAt = &started
	}
	if p.last != nil {
		st.LastReading = NewReadingStatus(*p.last)
	}
	return st
}
