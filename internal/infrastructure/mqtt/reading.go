package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/vacuum-logger/internal/gauge"
	"github.com/nerrad567/vacuum-logger/internal/store"
)

// ReadingMessage is the JSON payload published for every tick.
type ReadingMessage struct {
	Gauge     string              `json:"gauge"`
	RunID     string              `json:"run_id,omitempty"`
	Iteration int                 `json:"iteration"`
	Elapsed   float64             `json:"elapsed_s"`
	Timestamp string              `json:"timestamp"`
	Values    map[string]*float64 `json:"values"`
	Errors    map[string]string   `json:"errors,omitempty"`
	Overflow  bool                `json:"overflow,omitempty"`
}

// NewReadingMessage converts a reading into its published form. Every
// channel appears under "values"; failed channels are null and carry
// their reason under "errors".
func NewReadingMessage(r gauge.Reading, address, runID string) ReadingMessage {
	msg := ReadingMessage{
		Gauge:     address,
		RunID:     runID,
		Iteration: r.Iteration,
		Elapsed:   r.ElapsedSeconds(),
		Timestamp: r.Time.UTC().Format(time.RFC3339Nano),
		Values:    make(map[string]*float64, len(gauge.Channels())),
	}

	for _, ch := range gauge.Channels() {
		res := r.Result(ch)
		if !res.OK() {
			msg.Values[ch.Name] = nil
			if msg.Errors == nil {
				msg.Errors = make(map[string]string)
			}
			msg.Errors[ch.Name] = res.Err.Error()
			continue
		}
		v := res.Value
		msg.Values[ch.Name] = &v
	}

	msg.Overflow = r.Ion.OK() && r.Ion.Value > store.IonOverflow
	return msg
}

// ReadingWriter publishes readings of one gauge through a Client.
type ReadingWriter struct {
	client  *Client
	address string
	runID   string
}

// Readings returns a writer publishing to vacuum/gauge/{address}/reading.
func (c *Client) Readings(address, runID string) *ReadingWriter {
	return &ReadingWriter{client: c, address: address, runID: runID}
}

// Topic returns the topic the writer publishes to.
func (w *ReadingWriter) Topic() string {
	return Topics{}.GaugeReading(w.address)
}

// WriteReading publishes the reading as a retained message and waits for
// the broker acknowledgement (bounded by the publish timeout).
func (w *ReadingWriter) WriteReading(ctx context.Context, r gauge.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(NewReadingMessage(r, w.address, w.runID))
	if err != nil {
		return fmt.Errorf("encoding reading: %w", err)
	}
	return w.client.PublishRetained(w.Topic(), payload)
}
