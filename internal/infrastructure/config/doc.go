// Package config handles loading and validating vacuum-logger configuration.
//
// This package manages:
//   - Loading configuration from a YAML file
//   - Overriding with environment variables
//   - Expanding ${VAR} references in the recording path
//   - Validation of the serial and recording parameter sets
//
// The gauge and recording sections together are the validated parameter set
// the poller runs on. Everything else (InfluxDB, MQTT, API) is optional and
// disabled by default.
//
// Security Considerations:
//   - Broker credentials and the InfluxDB token should be set via environment
//     variables rather than committed to the config file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Gauge.Port, cfg.Recording.Interval)
package config
