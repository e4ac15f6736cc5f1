package influxdb

import (
	"context"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/vacuum-logger/internal/gauge"
	"github.com/nerrad567/vacuum-logger/internal/store"
)

// measurement is the InfluxDB measurement holding gauge readings.
const measurement = "pressure"

// PressurePoint builds the point for one reading.
//
// Tags: gauge (address) and run_id. Fields: iteration, elapsed_s and one
// field per channel that has a value. Failed channels and ion readings
// above the over-range code are left out rather than written as a sentinel.
func PressurePoint(r gauge.Reading, address, runID string) *write.Point {
	tags := map[string]string{
		"gauge": address,
	}
	if runID != "" {
		tags["run_id"] = runID
	}

	fields := map[string]interface{}{
		"iteration": r.Iteration,
		"elapsed_s": r.ElapsedSeconds(),
	}
	if r.Ion.OK() && r.Ion.Value <= store.IonOverflow {
		fields[gauge.Ion.Name] = r.Ion.Value
	}
	if r.CG1.OK() {
		fields[gauge.CG1.Name] = r.CG1.Value
	}
	if r.CG2.OK() {
		fields[gauge.CG2.Name] = r.CG2.Value
	}

	return write.NewPoint(measurement, tags, fields, r.Time)
}

// PressureWriter writes readings of one gauge through a Client.
type PressureWriter struct {
	client  *Client
	address string
	runID   string
}

// Pressure returns a writer tagging points with the gauge address and run id.
func (c *Client) Pressure(address, runID string) *PressureWriter {
	return &PressureWriter{client: c, address: address, runID: runID}
}

// WriteReading queues the reading's point. It never blocks on the network;
// delivery failures arrive through the client's error callback.
func (w *PressureWriter) WriteReading(_ context.Context, r gauge.Reading) error {
	if !w.client.IsConnected() {
		return ErrNotConnected
	}
	w.client.writeAPI.WritePoint(PressurePoint(r, w.address, w.runID))
	return nil
}
