package poller

import "fmt"

// StopPolicy decides when the loop has produced enough ticks.
type StopPolicy struct {
	limit   int
	forever bool
}

// RunForever returns a policy that only stops on context cancellation.
func RunForever() StopPolicy {
	return StopPolicy{forever: true}
}

// RunTicks returns a policy that stops after n ticks. RunTicks(0) runs none.
func RunTicks(n int) StopPolicy {
	if n < 0 {
		n = 0
	}
	return StopPolicy{limit: n}
}

// PolicyFromLimit maps the recording.duration setting onto a policy:
// 0 runs until stopped, n > 0 runs n ticks.
func PolicyFromLimit(n int) (StopPolicy, error) {
	switch {
	case n < 0:
		return StopPolicy{}, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	case n == 0:
		return RunForever(), nil
	default:
		return RunTicks(n), nil
	}
}

// Exhausted reports whether a run that has completed the given number of
// ticks must stop.
func (p StopPolicy) Exhausted(completed int) bool {
	return !p.forever && completed >= p.limit
}

// Forever reports whether the policy has no tick limit.
func (p StopPolicy) Forever() bool {
	return p.forever
}

// Limit returns the tick limit, or 0 for RunForever.
func (p StopPolicy) Limit() int {
	return p.limit
}

func (p StopPolicy) String() string {
	if p.forever {
		return "forever"
	}
	return fmt.Sprintf("%d ticks", p.limit)
}
