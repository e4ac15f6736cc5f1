// Package logging provides structured logging for the vacuum logger.
//
// It wraps log/slog so every entry carries the service name and build
// version, and so components can derive child loggers with With.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("gauge opened", "port", cfg.Gauge.Port)
//
// Never log broker passwords or InfluxDB tokens.
package logging
