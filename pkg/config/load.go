package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every BFF_SECTION_FIELD override.
const EnvPrefix = "BFF_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// An empty path yields the defaults. The configuration is not modified by
// environment variables; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}

		// Decoding over the defaults keeps fields the file leaves out.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
		ApplyDefaults(cfg)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables always take
// precedence over file-based configuration.
//
// The deployment variables quotes_url, reference_url, faulty_url,
// read_timeout and write_timeout (milliseconds) are honored in lower or upper
// case. Every other field follows BFF_SECTION_FIELD
// (e.g., BFF_SERVER_LISTEN_ADDRESS).
//
// The loading sequence is:
// 1. Load YAML from file (optional)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// lookupEnv returns the first non-empty value among the given names, and
// the name it was found under.
func lookupEnv(names ...string) (val, name string, ok bool) {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val, name, true
		}
	}
	return "", "", false
}

// envOverrides applies environment variables to a Config and collects a
// FieldError for every value that does not parse, so a mistyped deployment
// variable fails loading instead of silently keeping the default.
type envOverrides struct {
	errs []FieldError
}

func (e *envOverrides) invalid(field, name, val, want string) {
	e.errs = append(e.errs, FieldError{
		Field:   field,
		Message: fmt.Sprintf("environment variable %s=%q is not %s", name, val, want),
	})
}

func (e *envOverrides) string(dst *string, names ...string) {
	if val, _, ok := lookupEnv(names...); ok {
		*dst = val
	}
}

func (e *envOverrides) int(field string, dst *int, names ...string) {
	val, name, ok := lookupEnv(names...)
	if !ok {
		return
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		e.invalid(field, name, val, "an integer")
		return
	}
	*dst = i
}

func (e *envOverrides) float(field string, dst *float64, names ...string) {
	val, name, ok := lookupEnv(names...)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		e.invalid(field, name, val, "a number")
		return
	}
	*dst = f
}

func (e *envOverrides) bool(field string, dst *bool, names ...string) {
	val, name, ok := lookupEnv(names...)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		e.invalid(field, name, val, "a boolean")
		return
	}
	*dst = b
}

func (e *envOverrides) duration(field string, dst *time.Duration, parse func(string) (time.Duration, error), names ...string) {
	val, name, ok := lookupEnv(names...)
	if !ok {
		return
	}
	d, err := parse(val)
	if err != nil {
		e.invalid(field, name, val, "a duration")
		return
	}
	*dst = d
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. It returns a ValidationError naming every variable whose
// value could not be parsed.
func applyEnvOverrides(cfg *Config) error {
	var env envOverrides

	// Deployment variables; the timeouts are milliseconds.
	env.string(&cfg.Upstreams.QuotesURL, "quotes_url", "QUOTES_URL", EnvPrefix+"UPSTREAMS_QUOTES_URL")
	env.string(&cfg.Upstreams.ReferenceURL, "reference_url", "REFERENCE_URL", EnvPrefix+"UPSTREAMS_REFERENCE_URL")
	env.string(&cfg.Upstreams.FaultyURL, "faulty_url", "FAULTY_URL", EnvPrefix+"UPSTREAMS_FAULTY_URL")
	env.int("upstreams.read_timeout_ms", &cfg.Upstreams.ReadTimeoutMs, "read_timeout", "READ_TIMEOUT", EnvPrefix+"UPSTREAMS_READ_TIMEOUT_MS")
	env.int("upstreams.write_timeout_ms", &cfg.Upstreams.WriteTimeoutMs, "write_timeout", "WRITE_TIMEOUT", EnvPrefix+"UPSTREAMS_WRITE_TIMEOUT_MS")
	env.int("upstreams.connect_timeout_ms", &cfg.Upstreams.ConnectTimeoutMs, EnvPrefix+"UPSTREAMS_CONNECT_TIMEOUT_MS")

	// Server overrides
	env.string(&cfg.Server.ListenAddress, EnvPrefix+"SERVER_LISTEN_ADDRESS")
	env.duration("server.read_timeout", &cfg.Server.ReadTimeout, time.ParseDuration, EnvPrefix+"SERVER_READ_TIMEOUT")
	env.duration("server.write_timeout", &cfg.Server.WriteTimeout, time.ParseDuration, EnvPrefix+"SERVER_WRITE_TIMEOUT")
	env.duration("server.shutdown_timeout", &cfg.Server.ShutdownTimeout, time.ParseDuration, EnvPrefix+"SERVER_SHUTDOWN_TIMEOUT")
	env.bool("server.rate_limit.enabled", &cfg.Server.RateLimit.Enabled, EnvPrefix+"SERVER_RATE_LIMIT_ENABLED")
	env.float("server.rate_limit.requests_per_second", &cfg.Server.RateLimit.RequestsPerSecond, EnvPrefix+"SERVER_RATE_LIMIT_REQUESTS_PER_SECOND")
	env.int("server.rate_limit.burst", &cfg.Server.RateLimit.Burst, EnvPrefix+"SERVER_RATE_LIMIT_BURST")

	// Auth overrides
	env.string(&cfg.Auth.Mode, EnvPrefix+"AUTH_MODE")
	env.string(&cfg.Auth.StaticToken, EnvPrefix+"AUTH_STATIC_TOKEN")
	env.string(&cfg.Auth.CredentialsFile, EnvPrefix+"AUTH_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS")
	env.bool("auth.cache_tokens", &cfg.Auth.CacheTokens, EnvPrefix+"AUTH_CACHE_TOKENS")

	// Audit overrides
	env.bool("audit.enabled", &cfg.Audit.Enabled, EnvPrefix+"AUDIT_ENABLED")
	env.string(&cfg.Audit.Driver, EnvPrefix+"AUDIT_DRIVER")
	env.string(&cfg.Audit.Path, EnvPrefix+"AUDIT_PATH")
	env.int("audit.retention_days", &cfg.Audit.RetentionDays, EnvPrefix+"AUDIT_RETENTION_DAYS")

	// Services overrides. The reference delay keeps its historical unit of seconds.
	env.duration("services.reference.delay", &cfg.Services.Reference.Delay, parseSecondsOrDuration, "delay", "DELAY", EnvPrefix+"SERVICES_REFERENCE_DELAY")
	env.duration("services.faulty.delay", &cfg.Services.Faulty.Delay, time.ParseDuration, EnvPrefix+"SERVICES_FAULTY_DELAY")
	env.float("services.faulty.failure_ratio", &cfg.Services.Faulty.FailureRatio, EnvPrefix+"SERVICES_FAULTY_FAILURE_RATIO")

	// Telemetry overrides
	env.string(&cfg.Telemetry.Logging.Level, EnvPrefix+"TELEMETRY_LOGGING_LEVEL")
	env.string(&cfg.Telemetry.Logging.Format, EnvPrefix+"TELEMETRY_LOGGING_FORMAT")
	env.bool("telemetry.metrics.enabled", &cfg.Telemetry.Metrics.Enabled, EnvPrefix+"TELEMETRY_METRICS_ENABLED")
	env.bool("telemetry.tracing.enabled", &cfg.Telemetry.Tracing.Enabled, EnvPrefix+"TELEMETRY_TRACING_ENABLED")
	env.string(&cfg.Telemetry.Tracing.Endpoint, EnvPrefix+"TELEMETRY_TRACING_ENDPOINT")
	env.float("telemetry.tracing.sample_ratio", &cfg.Telemetry.Tracing.SampleRatio, EnvPrefix+"TELEMETRY_TRACING_SAMPLE_RATIO")

	if len(env.errs) > 0 {
		return ValidationError{Errors: env.errs}
	}
	return nil
}

// parseSecondsOrDuration accepts a bare integer number of seconds or a Go duration.
func parseSecondsOrDuration(val string) (time.Duration, error) {
	if i, err := strconv.Atoi(val); err == nil {
		return time.Duration(i) * time.Second, nil
	}
	return time.ParseDuration(val)
}
