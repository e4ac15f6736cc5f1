package gauge

import "time"

// Result is the outcome of reading one channel: a value, or the reason
// there is none.
type Result struct {
	Value float64
	Err   error
}

// Valid returns a successful Result.
func Valid(v float64) Result {
	return Result{Value: v}
}

// Failed returns a Result carrying err.
func Failed(err error) Result {
	return Result{Err: err}
}

// OK reports whether the Result holds a value.
func (r Result) OK() bool {
	return r.Err == nil
}

// Reading is the record produced by one poll tick.
type Reading struct {
	// Iteration is the 0-based tick number within the run.
	Iteration int

	// Elapsed is the time since the poll loop started.
	Elapsed time.Duration

	// Time is the wall-clock time the tick began.
	Time time.Time

	Ion Result
	CG1 Result
	CG2 Result
}

// ElapsedSeconds returns Elapsed as fractional seconds.
func (r Reading) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Result returns the channel's Result. Unknown channels report ErrInvalidValue.
func (r Reading) Result(ch Channel) Result {
	switch ch.Name {
	case Ion.Name:
		return r.Ion
	case CG1.Name:
		return r.CG1
	case CG2.Name:
		return r.CG2
	default:
		return Failed(ErrInvalidValue)
	}
}

// Failures returns the names of the channels without a value, in poll order.
func (r Reading) Failures() []string {
	var names []string
	for _, ch := range Channels() {
		if !r.Result(ch).OK() {
			names = append(names, ch.Name)
		}
	}
	return names
}
