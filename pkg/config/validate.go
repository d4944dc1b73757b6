package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
//
// Missing upstream URLs are not errors: they keep the startup gate down
// instead of preventing the process from starting.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateUpstreams(&cfg.Upstreams)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateServices(&cfg.Services)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, FieldError{
				Field:   "server.rate_limit.requests_per_second",
				Message: "requests per second must be positive when rate limiting is enabled",
			})
		}
		if cfg.RateLimit.Burst <= 0 {
			errs = append(errs, FieldError{
				Field:   "server.rate_limit.burst",
				Message: "burst must be positive when rate limiting is enabled",
			})
		}
	}

	return errs
}

func validateUpstreams(cfg *UpstreamsConfig) []FieldError {
	var errs []FieldError

	urls := []struct {
		field string
		value string
	}{
		{"upstreams.quotes_url", cfg.QuotesURL},
		{"upstreams.reference_url", cfg.ReferenceURL},
		{"upstreams.faulty_url", cfg.FaultyURL},
	}
	for _, u := range urls {
		if u.value == "" {
			continue
		}
		if err := validateBaseURL(u.value); err != nil {
			errs = append(errs, FieldError{Field: u.field, Message: err.Error()})
		}
	}

	if cfg.ReadTimeoutMs <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstreams.read_timeout_ms",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeoutMs <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstreams.write_timeout_ms",
			Message: "write timeout must be positive",
		})
	}
	if cfg.ConnectTimeoutMs <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstreams.connect_timeout_ms",
			Message: "connect timeout must be positive",
		})
	}

	return errs
}

// validateBaseURL checks that a base URL is absolute http(s).
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: host is required", raw)
	}
	return nil
}

func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError

	switch cfg.Mode {
	case AuthModeIDToken, AuthModeMetadata:
	case AuthModeStatic:
		if cfg.StaticToken == "" {
			errs = append(errs, FieldError{
				Field:   "auth.static_token",
				Message: "static token is required when mode is 'static'",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "auth.mode",
			Message: fmt.Sprintf("invalid auth mode %q: must be 'idtoken', 'metadata', or 'static'", cfg.Mode),
		})
	}

	if cfg.TokenTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "auth.token_timeout",
			Message: "token timeout must be non-negative",
		})
	}

	return errs
}

func validateAudit(cfg *AuditConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError

	switch cfg.Driver {
	case "memory":
	case "sqlite", "sqlite3":
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "audit.path",
				Message: "path is required for sqlite drivers",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "audit.driver",
			Message: fmt.Sprintf("invalid audit driver %q: must be 'memory', 'sqlite', or 'sqlite3'", cfg.Driver),
		})
	}

	if cfg.BufferSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "audit.buffer_size",
			Message: "buffer size must be positive",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.RetentionDays > 0 {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
			})
		}
	}

	return errs
}

func validateServices(cfg *ServicesConfig) []FieldError {
	var errs []FieldError

	if cfg.Reference.Delay < 0 {
		errs = append(errs, FieldError{
			Field:   "services.reference.delay",
			Message: "delay must be non-negative",
		})
	}
	if cfg.Faulty.Delay < 0 {
		errs = append(errs, FieldError{
			Field:   "services.faulty.delay",
			Message: "delay must be non-negative",
		})
	}
	if cfg.Faulty.FailureRatio < 0 || cfg.Faulty.FailureRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "services.faulty.failure_ratio",
			Message: "failure ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	paths := map[string]string{
		"telemetry.health.liveness_path":  cfg.Health.LivenessPath,
		"telemetry.health.readiness_path": cfg.Health.ReadinessPath,
		"telemetry.health.startup_path":   cfg.Health.StartupPath,
		"telemetry.health.version_path":   cfg.Health.VersionPath,
	}
	for field, path := range paths {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "path must start with /",
			})
		}
	}

	if cfg.Health.CheckTimeout < 0 || cfg.Health.CheckTimeout > 60*time.Second {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_timeout",
			Message: "check timeout must be between 0 and 60s",
		})
	}

	return errs
}
