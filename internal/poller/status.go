package poller

import (
	"time"

	"github.com/nerrad567/vacuum-logger/internal/gauge"
)

// State is the lifecycle stage of a Poller.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of a Poller.
type Status struct {
	State           string         `json:"state"`
	RunID           string         `json:"run_id,omitempty"`
	Policy          string         `json:"policy"`
	Interval        float64        `json:"interval_s"`
	Iterations      int            `json:"iterations"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	LastReading     *ReadingStatus `json:"last_reading,omitempty"`
	ChannelFailures map[string]int `json:"channel_failures"`
	SinkErrors      map[string]int `json:"sink_errors"`
}

// ReadingStatus is the JSON view of a gauge.Reading.
type ReadingStatus struct {
	Iteration int                      `json:"iteration"`
	Elapsed   float64                  `json:"elapsed_s"`
	Time      time.Time                `json:"time"`
	Channels  map[string]ChannelStatus `json:"channels"`
}

// ChannelStatus is one channel's value, or why there is none.
type ChannelStatus struct {
	Value *float64 `json:"value"`
	Error string   `json:"error,omitempty"`
}

// NewReadingStatus converts r for JSON output.
func NewReadingStatus(r gauge.Reading) *ReadingStatus {
	rs := &ReadingStatus{
		Iteration: r.Iteration,
		Elapsed:   r.ElapsedSeconds(),
		Time:      r.Time,
		Channels:  make(map[string]ChannelStatus, 3),
	}
	for _, ch := range gauge.Channels() {
		res := r.Result(ch)
		if res.OK() {
			v := res.Value
			rs.Channels[ch.Name] = ChannelStatus{Value: &v}
		} else {
			rs.Channels[ch.Name] = ChannelStatus{Error: res.Err.Error()}
		}
	}
	return rs
}
