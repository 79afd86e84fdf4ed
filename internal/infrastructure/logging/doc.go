// Package logging provides structured logging for energylog.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across both collector programs.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stderr"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "octopus", "1.0.0")
//	logger.Info("consumption fetched", "mpan", mpan)
//	logger.Error("write failed", "error", err)
//
// # Security
//
// Never log the Octopus API key or the InfluxDB token.
package logging
