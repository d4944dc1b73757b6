// Package config provides configuration management for the quotes BFF.
//
// This package handles loading, validating, and managing configuration from
// an optional YAML file with environment variable overrides.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("config.yaml")               // file only
//	cfg, err := config.LoadConfigWithEnvOverrides("")          // defaults + env
//	cfg, err := config.LoadConfigWithEnvOverrides("bff.yaml")  // file + env
//
// # Environment Variable Overrides
//
// The deployment variables used by the container images are honored as-is,
// in lower or upper case:
//
//   - quotes_url, reference_url, faulty_url: upstream base URLs
//   - read_timeout, write_timeout: outbound socket timeouts in milliseconds
//   - delay: reference service artificial delay in seconds
//
// Every other field follows BFF_SECTION_FIELD, for example
// BFF_SERVER_LISTEN_ADDRESS or BFF_TELEMETRY_LOGGING_LEVEL.
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// Missing upstream URLs pass validation. They are reported by the startup
// gate instead, so the process stays up and observable.
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	upstreams:
//	  quotes_url: "https://quotes-xyz.a.run.app"
//	  reference_url: "https://reference-xyz.a.run.app"
//	  faulty_url: "https://faulty-xyz.a.run.app"
//	  read_timeout_ms: 1000
//	  write_timeout_ms: 1000
//
//	auth:
//	  mode: "idtoken"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Hot Reload
//
// Watcher reloads the file on change. Only the logging level is applied to
// the running process; client timeouts and upstream URLs are fixed for the
// life of the process and RestartRequired reports such changes.
package config
