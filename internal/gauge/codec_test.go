package gauge_test

import (
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/nerrad567/vacuum-logger/internal/gauge"
	"github.com/nerrad567/vacuum-logger/internal/gauge/gaugetest"
)

var epoch = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestFrame(t *testing.T) {
	tests := []struct {
		address string
		command string
		want    string
	}{
		{"01", "RD", "#01RD\r"},
		{"01", "RDCG1", "#01RDCG1\r"},
		{"7F", "RDCG2", "#7FRDCG2\r"},
		{"", "RD", "#RD\r"},
	}

	for _, tt := range tests {
		t.Run(tt.address+tt.command, func(t *testing.T) {
			if got := string(gauge.Frame(tt.address, tt.command)); got != tt.want {
				t.Errorf("Frame(%q, %q) = %q, want %q", tt.address, tt.command, got, tt.want)
			}
		})
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    float64
		wantErr error
	}{
		{name: "scientific", reply: "*01 1.23e-5", want: 1.23e-5},
		{name: "upper case exponent", reply: "*01 2.34E-03", want: 2.34e-3},
		{name: "atmosphere", reply: "*01 7.60E+02", want: 760},
		{name: "trailing space", reply: "*01 5.00E-09 ", want: 5e-9},
		{name: "overflow code parses", reply: "*01 9.90E+09", want: 9.9e9},
		{name: "empty", reply: "", wantErr: gauge.ErrNoReply},
		{name: "other address", reply: "*02 1.23e-5", wantErr: gauge.ErrAddressMismatch},
		{name: "missing space", reply: "*011.23e-5", wantErr: gauge.ErrAddressMismatch},
		{name: "command echo", reply: "#01RD", wantErr: gauge.ErrAddressMismatch},
		{name: "error token", reply: "*01 SYNTX ER", wantErr: gauge.ErrInvalidValue},
		{name: "blank payload", reply: "*01 ", wantErr: gauge.ErrInvalidValue},
		{name: "nan", reply: "*01 NaN", wantErr: gauge.ErrInvalidValue},
		{name: "out of range", reply: "*01 1e400", wantErr: gauge.ErrInvalidValue},
		{name: "inf", reply: "*01 inf", wantErr: gauge.ErrInvalidValue},
		{name: "negative infinity", reply: "*01 -Infinity", wantErr: gauge.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gauge.ParseReply("01", tt.reply)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseReply(%q) error = %v, want %v", tt.reply, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReply(%q) error = %v", tt.reply, err)
			}
			if got != tt.want {
				t.Errorf("ParseReply(%q) = %g, want %g", tt.reply, got, tt.want)
			}
		})
	}
}

// Every numeric literal round-trips through a well-formed reply.
func TestParseReply_NumericLiterals(t *testing.T) {
	values := []float64{0, 1, -1, 1e-12, 3.3e-7, 1.5e-3, 760, 9.89e9, 1.2345678901234e-4}
	formats := []byte{'e', 'E', 'f', 'g'}

	for _, v := range values {
		for _, f := range formats {
			s := strconv.FormatFloat(v, f, -1, 64)
			got, err := gauge.ParseReply("01", "*01 "+s)
			if err != nil {
				t.Errorf("ParseReply(%q) error = %v", s, err)
				continue
			}
			want, _ := strconv.ParseFloat(s, 64)
			if got != want {
				t.Errorf("ParseReply(%q) = %g, want %g", s, got, want)
			}
		}
	}
}

func newCodec(tr *gaugetest.Transport, clk *gaugetest.Clock, pacing gauge.Pacing) *gauge.Codec {
	return gauge.NewCodec(tr, gauge.Config{
		Address:     "01",
		ReadTimeout: time.Second,
		Pacing:      pacing,
		Clock:       clk,
	})
}

func TestTransact_OrderAndPacing(t *testing.T) {
	clk := gaugetest.NewClock(epoch)
	tr := gaugetest.NewTransport(gaugetest.Line("*01 1.23e-5\r"))
	tr.Clock = clk
	tr.SetOpen(true)

	codec := newCodec(tr, clk, gauge.Pacing{Before: 50 * time.Millisecond, After: 80 * time.Millisecond})

	reply, err := codec.Transact("RD")
	if err != nil {
		t.Fatalf("Transact() error = %v", err)
	}
	if reply != "*01 1.23e-5" {
		t.Errorf("Transact() = %q, want trimmed reply", reply)
	}

	events := tr.Events()
	wantOps := []string{"reset-in", "reset-out", "write", "read"}
	if len(events) != len(wantOps) {
		t.Fatalf("events = %+v, want ops %v", events, wantOps)
	}
	for i, op := range wantOps {
		if events[i].Op != op {
			t.Errorf("event %d = %s, want %s", i, events[i].Op, op)
		}
	}

	if events[2].Data != "#01RD\r" {
		t.Errorf("frame = %q, want %q", events[2].Data, "#01RD\r")
	}
	if got := events[2].At.Sub(events[1].At); got != 50*time.Millisecond {
		t.Errorf("delay before write = %v, want 50ms", got)
	}
	if got := events[3].At.Sub(events[2].At); got != 80*time.Millisecond {
		t.Errorf("delay after write = %v, want 80ms", got)
	}
	if got := clk.Now().Sub(epoch); got != 130*time.Millisecond {
		t.Errorf("virtual time advanced %v, want 130ms", got)
	}
}

func TestTransact_Failures(t *testing.T) {
	cause := errors.New("io failure")

	tests := []struct {
		name    string
		setup   func(tr *gaugetest.Transport)
		wantErr error
	}{
		{
			name:    "closed port",
			setup:   func(tr *gaugetest.Transport) { tr.SetOpen(false) },
			wantErr: gauge.ErrPortClosed,
		},
		{
			name:    "timeout",
			setup:   func(tr *gaugetest.Transport) { tr.Script(gaugetest.Timeout) },
			wantErr: gauge.ErrNoReply,
		},
		{
			name:    "whitespace only",
			setup:   func(tr *gaugetest.Transport) { tr.Script(gaugetest.Line(" \r")) },
			wantErr: gauge.ErrNoReply,
		},
		{
			name:    "read error",
			setup:   func(tr *gaugetest.Transport) { tr.Script(gaugetest.Reply{Err: cause}) },
			wantErr: gauge.ErrTransport,
		},
		{
			name:    "write error",
			setup:   func(tr *gaugetest.Transport) { tr.WriteErr = cause },
			wantErr: gauge.ErrTransport,
		},
		{
			name:    "reset error",
			setup:   func(tr *gaugetest.Transport) { tr.ResetErr = cause },
			wantErr: gauge.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := gaugetest.NewTransport()
			tr.SetOpen(true)
			tt.setup(tr)

			codec := newCodec(tr, gaugetest.NewClock(epoch), gauge.UniformPacing(0))
			_, err := codec.Transact("RD")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Transact() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransact_NoRetry(t *testing.T) {
	tr := gaugetest.NewTransport(gaugetest.Timeout, gaugetest.Line("*01 1.0"))
	tr.SetOpen(true)
	codec := newCodec(tr, gaugetest.NewClock(epoch), gauge.UniformPacing(time.Millisecond))

	if _, err := codec.Transact("RD"); !errors.Is(err, gauge.ErrNoReply) {
		t.Fatalf("Transact() error = %v, want ErrNoReply", err)
	}
	if n := len(tr.Writes()); n != 1 {
		t.Errorf("frames written = %d, want 1", n)
	}
}

func TestRead(t *testing.T) {
	tr := gaugetest.NewTransport(
		gaugetest.Line("*01 1.23e-5"),
		gaugetest.Line("*02 7.6E+02"),
		gaugetest.Timeout,
	)
	tr.SetOpen(true)
	codec := newCodec(tr, gaugetest.NewClock(epoch), gauge.UniformPacing(50*time.Millisecond))

	ion := codec.Read(gauge.Ion)
	if !ion.OK() || ion.Value != 1.23e-5 {
		t.Errorf("Read(Ion) = %+v, want 1.23e-5", ion)
	}

	cg1 := codec.Read(gauge.CG1)
	if !errors.Is(cg1.Err, gauge.ErrAddressMismatch) {
		t.Errorf("Read(CG1) error = %v, want ErrAddressMismatch", cg1.Err)
	}

	cg2 := codec.Read(gauge.CG2)
	if !errors.Is(cg2.Err, gauge.ErrNoReply) {
		t.Errorf("Read(CG2) error = %v, want ErrNoReply", cg2.Err)
	}

	want := []string{"#01RD\r", "#01RDCG1\r", "#01RDCG2\r"}
	got := tr.Writes()
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Errorf("frames = %q, want %q", got, want)
			break
		}
	}
}

func TestReading(t *testing.T) {
	r := gauge.Reading{
		Iteration: 2,
		Elapsed:   1500 * time.Millisecond,
		Ion:       gauge.Valid(1e-6),
		CG1:       gauge.Failed(gauge.ErrNoReply),
		CG2:       gauge.Failed(gauge.ErrInvalidValue),
	}

	if got := r.ElapsedSeconds(); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("ElapsedSeconds() = %v, want 1.5", got)
	}
	failures := r.Failures()
	if len(failures) != 2 || failures[0] != "cg1" || failures[1] != "cg2" {
		t.Errorf("Failures() = %v, want [cg1 cg2]", failures)
	}
	if got := r.Result(gauge.Ion); got.Value != 1e-6 {
		t.Errorf("Result(Ion) = %+v", got)
	}
}

func TestChannels_Order(t *testing.T) {
	chs := gauge.Channels()
	want := []string{"RD", "RDCG1", "RDCG2"}
	if len(chs) != len(want) {
		t.Fatalf("Channels() = %v", chs)
	}
	for i, c := range chs {
		if c.Command != want[i] {
			t.Errorf("Channels()[%d] = %s, want %s", i, c.Command, want[i])
		}
	}
}
