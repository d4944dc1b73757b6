package config

import "time"

// Config is the root configuration structure for the quotes BFF.
// It contains all configuration sections for the HTTP server, the upstream
// services, outbound authentication, the audit trail, and telemetry.
type Config struct {
	// Server contains inbound HTTP server configuration including listen
	// address, timeouts, CORS, and rate limiting.
	Server ServerConfig `yaml:"server"`

	// Upstreams contains the base URLs of the backing services and the
	// read/write timeouts used for every outbound call.
	Upstreams UpstreamsConfig `yaml:"upstreams"`

	// Auth contains configuration for minting audience-bound bearer tokens.
	Auth AuthConfig `yaml:"auth"`

	// Audit contains configuration for the quote audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Services contains configuration for the auxiliary reference and faulty
	// services served by the same binary.
	Services ServicesConfig `yaml:"services"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing, and health probes.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the inbound HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the BFF to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "0.0.0.0:8080", or ":$PORT" when PORT is set
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire inbound
	// request, including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the upstream read timeout, otherwise slow
	// upstream calls are cut before they can be converted to a 500.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// RateLimit contains inbound rate limiting configuration.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 3600 (1 hour)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed in CORS requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// RateLimitConfig contains configuration for the inbound token bucket limiter.
type RateLimitConfig struct {
	// Enabled controls whether inbound requests are rate limited.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained request rate.
	// Default: 100
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the maximum number of requests allowed in a single burst.
	// Default: 200
	Burst int `yaml:"burst"`
}

// UpstreamsConfig contains the backing service locations and the socket
// timeouts of the shared outbound client.
//
// Timeouts are expressed in milliseconds to match the deployment environment
// variables (READ_TIMEOUT, WRITE_TIMEOUT).
type UpstreamsConfig struct {
	// QuotesURL is the base URL of the quotes service. Required for the gate
	// to go up.
	QuotesURL string `yaml:"quotes_url"`

	// ReferenceURL is the base URL of the reference data service. Required
	// for the gate to go up.
	ReferenceURL string `yaml:"reference_url"`

	// FaultyURL is the base URL of the faulty service.
	FaultyURL string `yaml:"faulty_url"`

	// ReadTimeoutMs bounds every socket read of an outbound call.
	// Default: 10000
	ReadTimeoutMs int `yaml:"read_timeout_ms"`

	// WriteTimeoutMs bounds every socket write of an outbound call.
	// Default: 10000
	WriteTimeoutMs int `yaml:"write_timeout_ms"`

	// ConnectTimeoutMs bounds connection establishment.
	// Default: 10000
	ConnectTimeoutMs int `yaml:"connect_timeout_ms"`
}

// ReadTimeout returns the outbound read timeout as a duration.
func (u UpstreamsConfig) ReadTimeout() time.Duration {
	return time.Duration(u.ReadTimeoutMs) * time.Millisecond
}

// WriteTimeout returns the outbound write timeout as a duration.
func (u UpstreamsConfig) WriteTimeout() time.Duration {
	return time.Duration(u.WriteTimeoutMs) * time.Millisecond
}

// ConnectTimeout returns the outbound connect timeout as a duration.
func (u UpstreamsConfig) ConnectTimeout() time.Duration {
	return time.Duration(u.ConnectTimeoutMs) * time.Millisecond
}

// AuthConfig contains configuration for outbound bearer tokens.
type AuthConfig struct {
	// Mode selects the token source.
	// Options: "idtoken" (application default credentials), "metadata"
	// (instance metadata identity endpoint), "static" (fixed token, local only)
	// Default: "idtoken"
	Mode string `yaml:"mode"`

	// StaticToken is the token used in "static" mode.
	StaticToken string `yaml:"static_token"`

	// CredentialsFile is an optional service account key file used in
	// "idtoken" mode instead of application default credentials.
	CredentialsFile string `yaml:"credentials_file"`

	// TokenTimeout bounds a single token fetch. Zero means the upstream read
	// timeout is used.
	// Default: 0
	TokenTimeout time.Duration `yaml:"token_timeout"`

	// CacheTokens reuses a token per audience until shortly before it expires.
	// Default: false (a fresh token is minted for every call)
	CacheTokens bool `yaml:"cache_tokens"`
}

// AuditConfig contains configuration for the quote audit trail.
type AuditConfig struct {
	// Enabled controls whether audit records are written.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Driver selects the storage backend.
	// Options: "memory", "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file for the sqlite drivers.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// BufferSize is the capacity of the async write channel.
	// Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// WriteTimeout bounds a single storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// RetentionDays is how long records are kept. Zero keeps them forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for retention pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// ServicesConfig contains configuration for the auxiliary services.
type ServicesConfig struct {
	// Reference configures the reference data service.
	Reference ReferenceServiceConfig `yaml:"reference"`

	// Faulty configures the faulty service.
	Faulty FaultyServiceConfig `yaml:"faulty"`
}

// ReferenceServiceConfig contains configuration for the reference service.
type ReferenceServiceConfig struct {
	// ListenAddress is the listen address of the reference service.
	// Default: "0.0.0.0:8081"
	ListenAddress string `yaml:"listen_address"`

	// Delay is an artificial delay added to every /metadata response.
	// Default: 0
	Delay time.Duration `yaml:"delay"`
}

// FaultyServiceConfig contains configuration for the faulty service.
type FaultyServiceConfig struct {
	// ListenAddress is the listen address of the faulty service.
	// Default: "0.0.0.0:8082"
	ListenAddress string `yaml:"listen_address"`

	// Delay is an artificial delay added to every response.
	// Default: 0
	Delay time.Duration `yaml:"delay"`

	// FailureRatio is the fraction of requests answered with 503.
	// Default: 0
	FailureRatio float64 `yaml:"failure_ratio"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health probe configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit. Changes are applied without a
	// restart when the configuration file is watched.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactTokens masks bearer tokens and JWTs in log attributes.
	// Default: true
	RedactTokens bool `yaml:"redact_tokens"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "quotes"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "bff"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for request and upstream
	// durations (seconds).
	// Default: [0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "quotes-bff"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for span exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health probe configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// StartupPath is the path for the startup probe endpoint.
	// Default: "/startup"
	StartupPath string `yaml:"startup_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for readiness checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
