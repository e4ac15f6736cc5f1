package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/vacuum-logger/internal/poller"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("VACUUMLOGGER_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_ValidationError verifies run refuses a config that fails validation.
func TestRun_ValidationError(t *testing.T) {
	t.Setenv("VACUUMLOGGER_CONFIG", writeConfig(t, `
gauge:
  baudrate: 0
`))

	if err := run(context.Background()); err == nil {
		t.Fatal("run() should fail validation")
	}
}

// TestRun_SerialPortMissing verifies a port that cannot be opened is fatal
// and nothing is recorded.
func TestRun_SerialPortMissing(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data", "vacuum.db")

	t.Setenv("VACUUMLOGGER_CONFIG", writeConfig(t, `
gauge:
  port: "/nonexistent/ttyUSB9"
recording:
  store_data: true
  interval: 0
  duration: 1
logging:
  level: error
  format: text
`))
	t.Setenv("VACUUMLOGGER_RECORDING_PATH", dataPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if !errors.Is(err, poller.ErrTransportOpen) {
		t.Fatalf("run() error = %v, want ErrTransportOpen", err)
	}
	if _, statErr := os.Stat(dataPath); !os.IsNotExist(statErr) {
		t.Errorf("series file should not exist after a failed open, stat error = %v", statErr)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("VACUUMLOGGER_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("VACUUMLOGGER_CONFIG", "/etc/vacuum/config.yaml")
	if got := getConfigPath(); got != "/etc/vacuum/config.yaml" {
		t.Errorf("getConfigPath() = %q, want /etc/vacuum/config.yaml", got)
	}
}
