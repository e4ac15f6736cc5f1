package transport

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"go.bug.st/serial"
)

// fakePort replays scripted reads and records writes.
type fakePort struct {
	reads    [][]byte
	readErr  error
	written  bytes.Buffer
	calls    []string
	timeouts []time.Duration
	closed   bool
}

func (f *fakePort) Read(p []byte) (int, error) {
	f.calls = append(f.calls, "read")
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(f.reads) == 0 {
		return 0, nil // timeout
	}
	n := copy(p, f.reads[0])
	if n < len(f.reads[0]) {
		f.reads[0] = f.reads[0][n:]
	} else {
		f.reads = f.reads[1:]
	}
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.calls = append(f.calls, "write")
	// Accept at most 3 bytes per call to exercise partial writes.
	if len(p) > 3 {
		p = p[:3]
	}
	return f.written.Write(p)
}

func (f *fakePort) ResetInputBuffer() error {
	f.calls = append(f.calls, "reset-in")
	return nil
}

func (f *fakePort) ResetOutputBuffer() error {
	f.calls = append(f.calls, "reset-out")
	return nil
}

func (f *fakePort) SetReadTimeout(t time.Duration) error {
	f.timeouts = append(f.timeouts, t)
	return nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func newTestSerial(t *testing.T, fp *fakePort) *Serial {
	t.Helper()
	s := New(Config{Port: "/dev/ttyTEST", BaudRate: 19200}, WithOpener(func(_ string, _ *serial.Mode) (Port, error) {
		return fp, nil
	}))
	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestOpen_Mode(t *testing.T) {
	var gotName string
	var gotMode *serial.Mode
	s := New(Config{Port: "/dev/ttyUSB0", BaudRate: 19200}, WithOpener(func(name string, mode *serial.Mode) (Port, error) {
		gotName, gotMode = name, mode
		return &fakePort{}, nil
	}))

	if s.IsOpen() {
		t.Fatal("IsOpen() = true before Open")
	}
	if err := s.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !s.IsOpen() {
		t.Error("IsOpen() = false after Open")
	}
	if gotName != "/dev/ttyUSB0" {
		t.Errorf("opened %q, want /dev/ttyUSB0", gotName)
	}
	if gotMode.BaudRate != 19200 || gotMode.DataBits != 8 || gotMode.Parity != serial.NoParity || gotMode.StopBits != serial.OneStopBit {
		t.Errorf("mode = %+v, want 19200 8N1", *gotMode)
	}

	if err := s.Open(); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("second Open() error = %v, want ErrAlreadyOpen", err)
	}
}

func TestOpen_Failure(t *testing.T) {
	cause := errors.New("no such device")
	s := New(Config{Port: "/dev/missing"}, WithOpener(func(string, *serial.Mode) (Port, error) {
		return nil, cause
	}))

	err := s.Open()
	if !errors.Is(err, ErrOpenFailed) || !errors.Is(err, cause) {
		t.Errorf("Open() error = %v, want ErrOpenFailed wrapping cause", err)
	}
	if s.IsOpen() {
		t.Error("IsOpen() = true after failed Open")
	}
}

func TestClose(t *testing.T) {
	fp := &fakePort{}
	s := newTestSerial(t, fp)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !fp.closed {
		t.Error("underlying port not closed")
	}
	if s.IsOpen() {
		t.Error("IsOpen() = true after Close")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestClosedOperations(t *testing.T) {
	s := New(Config{Port: "/dev/ttyTEST"})

	ops := map[string]func() error{
		"ResetInput":  s.ResetInput,
		"ResetOutput": s.ResetOutput,
		"Write":       func() error { return s.Write([]byte("x")) },
		"ReadLine": func() error {
			_, err := s.ReadLine(time.Second)
			return err
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, ErrNotOpen) {
				t.Errorf("%s() error = %v, want ErrNotOpen", name, err)
			}
		})
	}
}

func TestWrite_Partial(t *testing.T) {
	fp := &fakePort{}
	s := newTestSerial(t, fp)

	frame := []byte("#01RDCG1\r")
	if err := s.Write(frame); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.Equal(fp.written.Bytes(), frame) {
		t.Errorf("written = %q, want %q", fp.written.Bytes(), frame)
	}
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name  string
		reads [][]byte
		want  string
	}{
		{"single chunk", [][]byte{[]byte("*01 1.23E-05\r")}, "*01 1.23E-05"},
		{"split chunks", [][]byte{[]byte("*01 2."), []byte("34E-03\r")}, "*01 2.34E-03"},
		{"lf terminator", [][]byte{[]byte("*01 7.60E+02\n")}, "*01 7.60E+02"},
		{"leading blank line", [][]byte{[]byte("\r\n*01 1.00E-09\r")}, "*01 1.00E-09"},
		{"timeout mid line", [][]byte{[]byte("*01 1.")}, "*01 1."},
		{"silence", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakePort{reads: tt.reads}
			s := newTestSerial(t, fp)

			got, err := s.ReadLine(time.Second)
			if err != nil {
				t.Fatalf("ReadLine() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadLine() = %q, want %q", got, tt.want)
			}
			for _, d := range fp.timeouts {
				if d <= 0 || d > time.Second {
					t.Errorf("read timeout %v outside (0, 1s]", d)
				}
			}
		})
	}
}

func TestReadLine_KeepsRemainderUntilReset(t *testing.T) {
	fp := &fakePort{reads: [][]byte{[]byte("*01 1\r*01 2\r")}}
	s := newTestSerial(t, fp)

	first, _ := s.ReadLine(time.Second)
	second, _ := s.ReadLine(time.Second)
	if string(first) != "*01 1" || string(second) != "*01 2" {
		t.Errorf("lines = %q, %q", first, second)
	}

	fp.reads = [][]byte{[]byte("*01 3\r*01 4\r")}
	if _, err := s.ReadLine(time.Second); err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if err := s.ResetInput(); err != nil {
		t.Fatalf("ResetInput() error = %v", err)
	}
	got, _ := s.ReadLine(time.Second)
	if len(got) != 0 {
		t.Errorf("ReadLine() after reset = %q, want empty", got)
	}
}

func TestReadLine_DeviceError(t *testing.T) {
	cause := errors.New("device unplugged")
	fp := &fakePort{readErr: cause}
	s := newTestSerial(t, fp)

	if _, err := s.ReadLine(time.Second); !errors.Is(err, cause) {
		t.Errorf("ReadLine() error = %v, want wrapped cause", err)
	}
}

func TestResets(t *testing.T) {
	fp := &fakePort{}
	s := newTestSerial(t, fp)

	if err := s.ResetInput(); err != nil {
		t.Fatalf("ResetInput() error = %v", err)
	}
	if err := s.ResetOutput(); err != nil {
		t.Fatalf("ResetOutput() error = %v", err)
	}
	want := []string{"reset-in", "reset-out"}
	if len(fp.calls) != 2 || fp.calls[0] != want[0] || fp.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", fp.calls, want)
	}
}
