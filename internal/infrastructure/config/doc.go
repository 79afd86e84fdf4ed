// Package config handles loading and validating energylog configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Loading secrets from an optional .env file
//   - Overriding with environment variables
//   - Per-program validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The Octopus API key and InfluxDB token should be set via environment
//     variables or the .env file, not committed in config.yaml
//   - The config and .env files should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ValidateOctopus(); err != nil {
//	    log.Fatal(err)
//	}
//
// The returned *Config is built once in main and passed to the pipelines;
// there is no package-level configuration state.
package config
