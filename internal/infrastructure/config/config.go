package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the vacuum logger.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Gauge     GaugeConfig     `yaml:"gauge"`
	Recording RecordingConfig `yaml:"recording"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GaugeConfig contains the serial link settings for the ionisation gauge.
type GaugeConfig struct {
	// Port is the serial device path (e.g., "/dev/ttyUSB0").
	Port string `yaml:"port"`

	// BaudRate must match the rate configured on the gauge controller.
	BaudRate int `yaml:"baudrate"`

	// Address is the RS-485 address of the gauge (e.g., "01").
	// Every frame carries it; a mismatch makes every transaction fail.
	Address string `yaml:"address"`

	// Timeout is the reply read timeout in seconds.
	Timeout float64 `yaml:"timeout"`

	// MinDelay is the settling delay in seconds applied before and after
	// every frame write.
	MinDelay float64 `yaml:"min_delay"`
}

// RecordingConfig contains the poll loop and persistence settings.
type RecordingConfig struct {
	// StoreData enables appending readings to the time-series file.
	StoreData bool `yaml:"store_data"`

	// Path is the time-series file. ${VAR} references are expanded on load.
	Path string `yaml:"path"`

	// Interval is the pause between ticks in seconds.
	Interval float64 `yaml:"interval"`

	// Duration is the number of ticks to run. 0 runs until stopped.
	Duration int `yaml:"duration"`

	// BusyTimeout is the SQLite lock wait in seconds.
	BusyTimeout int `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains the status HTTP API settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded, matching the gauge factory settings)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//  4. ${VAR} expansion of the recording path
//
// Environment variables follow the pattern: VACUUMLOGGER_SECTION_KEY
// For example: VACUUMLOGGER_GAUGE_PORT, VACUUMLOGGER_RECORDING_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	// Paths such as ${VIPER_DIR}/data/vacuum.db are resolved here so the
	// store only ever sees a concrete filesystem path.
	cfg.Recording.Path = os.ExpandEnv(cfg.Recording.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the gauge's factory defaults.
func defaultConfig() *Config {
	return &Config{
		Gauge: GaugeConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: 19200,
			Address:  "01",
			Timeout:  1.0,
			MinDelay: 0.05,
		},
		Recording: RecordingConfig{
			StoreData:   true,
			Path:        "./data/vacuum_data.db",
			Interval:    5.0,
			Duration:    300,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "vacuum-logger",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: VACUUMLOGGER_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Gauge
	if v := os.Getenv("VACUUMLOGGER_GAUGE_PORT"); v != "" {
		cfg.Gauge.Port = v
	}
	if v := os.Getenv("VACUUMLOGGER_GAUGE_ADDRESS"); v != "" {
		cfg.Gauge.Address = v
	}

	// Recording
	if v := os.Getenv("VACUUMLOGGER_RECORDING_PATH"); v != "" {
		cfg.Recording.Path = v
	}

	// MQTT
	if v := os.Getenv("VACUUMLOGGER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("VACUUMLOGGER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("VACUUMLOGGER_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Gauge validation
	if c.Gauge.Port == "" {
		errs = append(errs, "gauge.port is required")
	}
	if c.Gauge.BaudRate <= 0 {
		errs = append(errs, "gauge.baudrate must be positive")
	}
	if c.Gauge.Address == "" {
		errs = append(errs, "gauge.address is required")
	} else if strings.ContainsAny(c.Gauge.Address, " \r\n#*") {
		errs = append(errs, "gauge.address must not contain spaces, line breaks, '#' or '*'")
	}
	if !(c.Gauge.Timeout > 0) || math.IsInf(c.Gauge.Timeout, 0) {
		errs = append(errs, "gauge.timeout must be a positive number of seconds")
	}
	if !(c.Gauge.MinDelay >= 0) || math.IsInf(c.Gauge.MinDelay, 0) {
		errs = append(errs, "gauge.min_delay must not be negative")
	}

	// Recording validation
	if c.Recording.StoreData && c.Recording.Path == "" {
		errs = append(errs, "recording.path is required when recording.store_data is true")
	}
	if !(c.Recording.Interval >= 0) || math.IsInf(c.Recording.Interval, 0) {
		errs = append(errs, "recording.interval must not be negative")
	}
	if c.Recording.Duration < 0 {
		errs = append(errs, "recording.duration must be 0 (run until stopped) or a positive tick count")
	}

	// MQTT validation
	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.url, influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ReadTimeout returns the gauge reply timeout as a Duration.
func (g GaugeConfig) ReadTimeout() time.Duration {
	return seconds(g.Timeout)
}

// SettleDelay returns the per-write settling delay as a Duration.
func (g GaugeConfig) SettleDelay() time.Duration {
	return seconds(g.MinDelay)
}

// IntervalDuration returns the inter-tick pause as a Duration.
func (r RecordingConfig) IntervalDuration() time.Duration {
	return seconds(r.Interval)
}

// ReadTimeout returns the API read timeout as a Duration.
func (a APIConfig) ReadTimeout() time.Duration {
	return time.Duration(a.Timeouts.Read) * time.Second
}

// WriteTimeout returns the API write timeout as a Duration.
func (a APIConfig) WriteTimeout() time.Duration {
	return time.Duration(a.Timeouts.Write) * time.Second
}

// IdleTimeout returns the API idle timeout as a Duration.
func (a APIConfig) IdleTimeout() time.Duration {
	return time.Duration(a.Timeouts.Idle) * time.Second
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
