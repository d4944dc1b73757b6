package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"runtime/debug"
	"sync"

	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/audit/recorder"
	"quotes-hq/bff/pkg/audit/retention"
	"quotes-hq/bff/pkg/audit/storage"
	"quotes-hq/bff/pkg/auth"
	"quotes-hq/bff/pkg/config"
	"quotes-hq/bff/pkg/proxy"
	"quotes-hq/bff/pkg/proxy/handlers"
	"quotes-hq/bff/pkg/proxy/middleware"
	"quotes-hq/bff/pkg/telemetry/health"
	"quotes-hq/bff/pkg/telemetry/logging"
	"quotes-hq/bff/pkg/telemetry/metrics"
	"quotes-hq/bff/pkg/telemetry/tracing"
	"quotes-hq/bff/pkg/upstream"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Options carries the collaborators New would otherwise build from
// configuration. Every field is optional.
type Options struct {
	Logger *slog.Logger

	// Logging receives live level changes when ConfigPath is watched.
	Logging *logging.Logger

	// ConfigPath is watched for changes while the server runs. Empty
	// disables watching.
	ConfigPath string

	// Tokens replaces the provider selected by the auth section.
	Tokens auth.Provider

	// Registry receives the Prometheus metrics. Nil creates a private one.
	Registry *prometheus.Registry

	// Tracer replaces the tracer built from the tracing section.
	Tracer *tracing.Tracer

	Version   string
	Commit    string
	BuildTime string
}

// Server is the BFF HTTP server.
type Server struct {
	config  *config.Config
	options Options
	logger  *slog.Logger

	collector *metrics.Collector
	tracer    *tracing.Tracer
	gate      *health.StartupGate
	checker   *health.Checker
	client    *upstream.Client
	targets   upstream.Targets
	metadata  *proxy.ReferenceMetadata

	auditStore audit.Storage
	recorder   *recorder.Recorder
	pruner     *retention.Pruner

	handler http.Handler

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	stopWatch    context.CancelFunc
}

// New wires the server from cfg. It does not contact any upstream; that
// happens in Initialize.
func New(cfg *config.Config, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   cfg,
		options:  opts,
		logger:   logger,
		metadata: &proxy.ReferenceMetadata{},
		targets:  upstream.TargetsFrom(&cfg.Upstreams),
	}

	s.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, opts.Registry)
	s.gate = health.NewStartupGate(s.collector.SetStartupGate)

	s.tracer = opts.Tracer
	if s.tracer == nil {
		tracer, err := tracing.New(&cfg.Telemetry.Tracing)
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer: %w", err)
		}
		s.tracer = tracer
	}

	clientCfg := upstream.ClientConfigFrom(&cfg.Upstreams)

	tokens := opts.Tokens
	if tokens == nil {
		provider, err := auth.New(&cfg.Auth, auth.Options{
			HTTPClient: upstream.NewHTTPClient(clientCfg),
			Timeout:    clientCfg.ReadTimeout,
			Metrics:    s.collector,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create token provider: %w", err)
		}
		tokens = provider
	}

	s.client = upstream.NewClient(clientCfg, tokens,
		upstream.WithMetrics(s.collector),
		upstream.WithTracer(s.tracer),
		upstream.WithLogger(logger),
	)

	if cfg.Audit.Enabled {
		store, err := storage.New(&cfg.Audit)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit storage: %w", err)
		}
		s.auditStore = store
		s.recorder = recorder.New(store, recorder.Config{
			BufferSize:   cfg.Audit.BufferSize,
			WriteTimeout: cfg.Audit.WriteTimeout,
			Logger:       logger,
		}, s.collector)
		s.pruner = retention.NewPruner(store, retention.Config{
			RetentionDays: cfg.Audit.RetentionDays,
			PruneSchedule: cfg.Audit.PruneSchedule,
			Logger:        logger,
		}, s.collector)
	}

	s.checker = health.New(cfg.Telemetry.Health.CheckTimeout)
	s.checker.RegisterCheck(health.CheckStartup, s.gate.ReadinessCheck())
	if s.auditStore != nil {
		s.checker.RegisterCheck(health.CheckAudit, func(ctx context.Context) (string, error) {
			n, err := s.auditStore.Count(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d records", n), nil
		})
	}

	s.handler = s.setupRoutes()

	return s, nil
}

// setupRoutes builds the chi router with the middleware chain. Probes and
// metrics are exempt from rate limiting.
func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware(s.logger))
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(s.collector))
	r.Use(middleware.TracingMiddleware(s.tracer))
	r.Use(middleware.CORSMiddleware(&s.config.Server.CORS))

	probes := s.checker.CreateHandlers(s.gate, s.options.Version, s.options.Commit, s.options.BuildTime)
	hc := s.config.Telemetry.Health
	r.Get(hc.LivenessPath, probes.Liveness)
	r.Get(hc.ReadinessPath, probes.Readiness)
	r.Get(hc.StartupPath, probes.Startup)
	r.Get(hc.VersionPath, probes.Version)

	if s.config.Telemetry.Metrics.Enabled {
		r.Handle(s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}

	opts := handlers.Options{
		Upstream: s.client,
		Targets:  s.targets,
		Metadata: s.metadata,
		Logger:   s.logger,
	}
	if s.recorder != nil {
		opts.Audit = s.recorder
	}
	if s.auditStore != nil {
		opts.AuditLog = s.auditStore
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(&s.config.Server.RateLimit))
		handlers.New(opts).Routes(r)
	})

	return r
}

// Initialize runs the startup checks and opens or closes the startup gate.
func (s *Server) Initialize(ctx context.Context) error {
	return proxy.Initialize(ctx, s.client, s.targets, s.gate, s.metadata, s.logger)
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs Initialize, starts the background jobs and serves on ln until
// ctx is done. A failed Initialize leaves the gate down but the server still
// answers probes and requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	if err := s.Initialize(ctx); err != nil {
		s.logger.Warn("startup initialization failed, gate stays down", "error", err)
	}

	if err := s.startBackground(ctx); err != nil {
		ln.Close()
		shutdownErr := s.Shutdown(context.Background())
		return errors.Join(err, shutdownErr)
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting BFF server",
			"address", ln.Addr().String(),
			"quotes_url", s.targets.Quotes.BaseURL,
			"reference_url", s.targets.Reference.BaseURL,
			"faulty_url", s.targets.Faulty.BaseURL,
			"cpus", runtime.NumCPU(),
			"gomaxprocs", runtime.GOMAXPROCS(0),
			"memory_limit_bytes", debug.SetMemoryLimit(-1),
		)

		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		shutdownErr := s.Shutdown(context.Background())
		return errors.Join(err, shutdownErr)
	}
}

func (s *Server) startBackground(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.stopWatch = cancel
	s.mu.Unlock()

	if s.pruner != nil {
		if err := s.pruner.Start(bgCtx); err != nil {
			return fmt.Errorf("failed to start audit retention: %w", err)
		}
	}

	if s.options.ConfigPath == "" {
		return nil
	}

	watcher, err := config.NewWatcher(s.options.ConfigPath, s.applyConfig, s.logger)
	if err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}
	go func() {
		if err := watcher.Run(bgCtx); err != nil {
			s.logger.Error("config watcher stopped", "error", err)
		}
	}()

	return nil
}

// applyConfig applies the live parts of a reloaded configuration. Upstreams
// and timeouts are fixed for the lifetime of the server.
func (s *Server) applyConfig(previous, current *config.Config) {
	if s.options.Logging != nil && previous.Telemetry.Logging.Level != current.Telemetry.Logging.Level {
		if err := s.options.Logging.SetLevel(current.Telemetry.Logging.Level); err != nil {
			s.logger.Error("failed to apply log level", "level", current.Telemetry.Logging.Level, "error", err)
		} else {
			s.logger.Info("log level changed", "level", current.Telemetry.Logging.Level)
		}
	}

	if sections := config.RestartRequired(previous, current); len(sections) > 0 {
		s.logger.Warn("configuration changes require a restart", "sections", sections)
	}
}

// Shutdown stops accepting requests, drains in-flight ones and releases
// the audit trail and the tracer. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		httpServer := s.httpServer
		stopWatch := s.stopWatch
		s.mu.RUnlock()

		timeout := s.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultShutdownTimeout
		}
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		if stopWatch != nil {
			stopWatch()
		}
		if s.pruner != nil {
			s.pruner.Stop()
		}
		if s.recorder != nil {
			if err := s.recorder.Close(); err != nil {
				errs = append(errs, fmt.Errorf("audit recorder close error: %w", err))
			}
		}
		if s.auditStore != nil {
			if err := s.auditStore.Close(); err != nil {
				errs = append(errs, fmt.Errorf("audit storage close error: %w", err))
			}
		}
		if err := s.tracer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown error: %w", err))
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("BFF server stopped")
	})

	return errors.Join(errs...)
}

// IsRunning returns true while the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Gate returns the startup gate.
func (s *Server) Gate() *health.StartupGate {
	return s.gate
}

// Metadata returns the reference metadata fetched by Initialize.
func (s *Server) Metadata() *proxy.ReferenceMetadata {
	return s.metadata
}

// Collector returns the metrics collector.
func (s *Server) Collector() *metrics.Collector {
	return s.collector
}
