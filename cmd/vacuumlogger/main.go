// vacuum-logger polls a Kurt J. Lesker 354 ionisation gauge over RS-485 and
// records its ionisation and convection gauge pressures.
//
// Readings are appended to a SQLite series file and can be mirrored to
// InfluxDB and MQTT. A read-only HTTP API exposes the live status.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/nerrad567/vacuum-logger/internal/api"
	"github.com/nerrad567/vacuum-logger/internal/gauge"
	"github.com/nerrad567/vacuum-logger/internal/infrastructure/config"
	"github.com/nerrad567/vacuum-logger/internal/infrastructure/influxdb"
	"github.com/nerrad567/vacuum-logger/internal/infrastructure/logging"
	"github.com/nerrad567/vacuum-logger/internal/infrastructure/mqtt"
	"github.com/nerrad567/vacuum-logger/internal/poller"
	"github.com/nerrad567/vacuum-logger/internal/store"
	"github.com/nerrad567/vacuum-logger/internal/transport"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil when the run completes or is interrupted, or the failure
//     that prevented acquisition (config, serial port, enabled output)
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting vacuum-logger",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"port", cfg.Gauge.Port,
		"address", cfg.Gauge.Address,
	)

	policy, err := poller.PolicyFromLimit(cfg.Recording.Duration)
	if err != nil {
		return fmt.Errorf("recording duration: %w", err)
	}

	runID := uuid.NewString()
	log = log.With("run_id", runID)

	var sinks []poller.Sink
	health := make(map[string]api.HealthChecker)

	var series *store.Store
	if cfg.Recording.StoreData {
		series = store.New(store.Config{
			Path:        cfg.Recording.Path,
			BusyTimeout: cfg.Recording.BusyTimeout,
		})
		sinks = append(sinks, poller.Sink{Name: "store", Writer: series})
		log.Info("recording to series file", "path", series.Path())
	} else {
		log.Info("recording disabled, readings are logged only")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		sinks = append(sinks, poller.Sink{Name: "influxdb", Writer: influxClient.Pressure(cfg.Gauge.Address, runID)})
		health["influxdb"] = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT, runID)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT connected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		sinks = append(sinks, poller.Sink{Name: "mqtt", Writer: mqttClient.Readings(cfg.Gauge.Address, runID)})
		health["mqtt"] = mqttClient
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	}

	link := transport.New(transport.Config{
		Port:     cfg.Gauge.Port,
		BaudRate: cfg.Gauge.BaudRate,
	})
	codec := gauge.NewCodec(link, gauge.Config{
		Address:     cfg.Gauge.Address,
		ReadTimeout: cfg.Gauge.ReadTimeout(),
		Pacing:      gauge.UniformPacing(cfg.Gauge.SettleDelay()),
	})

	p := poller.New(poller.Options{
		Transport: link,
		Codec:     codec,
		Sinks:     sinks,
		Interval:  cfg.Recording.IntervalDuration(),
		Policy:    policy,
		RunID:     runID,
		Logger:    log,
	})

	if cfg.API.Enabled {
		deps := api.Deps{
			Config:  cfg.API,
			Logger:  log,
			Status:  p,
			Health:  health,
			Version: version,
		}
		if series != nil {
			deps.Rows = series
		}
		srv, srvErr := api.New(deps)
		if srvErr != nil {
			return fmt.Errorf("creating API server: %w", srvErr)
		}
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	log.Info("acquisition starting",
		"policy", policy.String(),
		"interval", cfg.Recording.IntervalDuration().String(),
	)
	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("polling gauge: %w", err)
	}

	st := p.Status()
	log.Info("vacuum-logger stopped",
		"iterations", st.Iterations,
		"sink_errors", st.SinkErrors,
	)
	return nil
}

// getConfigPath returns the configuration file path.
// Uses VACUUMLOGGER_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VACUUMLOGGER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
