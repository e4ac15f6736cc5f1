package influxdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/vacuum-logger/internal/gauge"
)

type fakeWriteAPI struct {
	points  []*write.Point
	flushes int
}

func (f *fakeWriteAPI) WritePoint(p *write.Point) { f.points = append(f.points, p) }
func (f *fakeWriteAPI) Flush()                    { f.flushes++ }

func fields(p *write.Point) map[string]interface{} {
	m := make(map[string]interface{})
	for _, f := range p.FieldList() {
		m[f.Key] = f.Value
	}
	return m
}

func tags(p *write.Point) map[string]string {
	m := make(map[string]string)
	for _, t := range p.TagList() {
		m[t.Key] = t.Value
	}
	return m
}

func TestPressurePoint(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 0, 5, 0, time.UTC)

	tests := []struct {
		name       string
		reading    gauge.Reading
		wantFields []string
		absent     []string
	}{
		{
			name: "all channels",
			reading: gauge.Reading{
				Iteration: 1, Elapsed: 5 * time.Second, Time: at,
				Ion: gauge.Valid(1.2e-7), CG1: gauge.Valid(3e-3), CG2: gauge.Valid(4e-3),
			},
			wantFields: []string{"ion", "cg1", "cg2", "iteration", "elapsed_s"},
		},
		{
			name: "failed channel omitted",
			reading: gauge.Reading{
				Time: at,
				Ion:  gauge.Valid(1.2e-7), CG1: gauge.Failed(gauge.ErrNoReply), CG2: gauge.Valid(4e-3),
			},
			wantFields: []string{"ion", "cg2"},
			absent:     []string{"cg1"},
		},
		{
			name: "ion over range omitted",
			reading: gauge.Reading{
				Time: at,
				Ion:  gauge.Valid(9.9e9), CG1: gauge.Valid(7.6e2), CG2: gauge.Valid(7.6e2),
			},
			wantFields: []string{"cg1", "cg2"},
			absent:     []string{"ion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PressurePoint(tt.reading, "01", "run-1")

			if p.Name() != "pressure" {
				t.Errorf("Name() = %q, want pressure", p.Name())
			}
			if !p.Time().Equal(at) {
				t.Errorf("Time() = %v, want %v", p.Time(), at)
			}
			tg := tags(p)
			if tg["gauge"] != "01" || tg["run_id"] != "run-1" {
				t.Errorf("tags = %v", tg)
			}
			f := fields(p)
			for _, k := range tt.wantFields {
				if _, ok := f[k]; !ok {
					t.Errorf("field %q missing from %v", k, f)
				}
			}
			for _, k := range tt.absent {
				if _, ok := f[k]; ok {
					t.Errorf("field %q should be absent, got %v", k, f[k])
				}
			}
		})
	}
}

func TestPressurePoint_NoRunID(t *testing.T) {
	p := PressurePoint(gauge.Reading{Ion: gauge.Valid(1)}, "01", "")
	if _, ok := tags(p)["run_id"]; ok {
		t.Error("empty run id should not produce a tag")
	}
}

func TestPressureWriter(t *testing.T) {
	fake := &fakeWriteAPI{}
	c := &Client{writeAPI: fake, connected: true}
	w := c.Pressure("01", "run-1")

	r := gauge.Reading{Ion: gauge.Valid(1e-6), CG1: gauge.Valid(1e-3), CG2: gauge.Valid(1e-3)}
	if err := w.WriteReading(context.Background(), r); err != nil {
		t.Fatalf("WriteReading() error = %v", err)
	}
	if len(fake.points) != 1 {
		t.Fatalf("points = %d, want 1", len(fake.points))
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if fake.flushes != 1 {
		t.Errorf("flushes on close = %d, want 1", fake.flushes)
	}
	if err := w.WriteReading(context.Background(), r); !errors.Is(err, ErrNotConnected) {
		t.Errorf("WriteReading() after Close error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
