// Package faulty implements the faulty service, a backing service whose
// latency and error rate can be dialed up for resilience experiments.
package faulty

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"quotes-hq/bff/pkg/config"
	"quotes-hq/bff/pkg/proxy"
	"quotes-hq/bff/pkg/proxy/middleware"
	"quotes-hq/bff/pkg/services"
)

// Response bodies.
const (
	WorkingMessage = "Working as intended"
	StartedMessage = "FaultyController started"
)

// Service serves the faulty endpoints.
type Service struct {
	delay        time.Duration
	failureRatio float64
	random       func() float64
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRandom replaces the random source used for failure injection.
func WithRandom(fn func() float64) Option {
	return func(s *Service) {
		s.random = fn
	}
}

// NewService creates the faulty service.
func NewService(cfg *config.FaultyServiceConfig, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		delay:        cfg.Delay,
		failureRatio: cfg.FailureRatio,
		random:       rand.Float64,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the service router.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RecoveryMiddleware,
		middleware.LoggingMiddleware(s.logger),
		middleware.RequestIDMiddleware,
	)

	r.Get("/", s.handleRoot)
	r.Get("/start", s.handleStart)

	return r
}

// handleRoot answers WorkingMessage after the configured delay, or 503
// for the configured fraction of requests.
func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !services.Sleep(ctx, s.delay) {
		return
	}

	if s.failureRatio > 0 && s.random() < s.failureRatio {
		s.logger.WarnContext(ctx, "injecting failure", "failure_ratio", s.failureRatio)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	_ = proxy.WriteBody(w, http.StatusOK, proxy.ContentTypeText, []byte(WorkingMessage))
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	s.logger.InfoContext(r.Context(), "executed start endpoint request",
		"at", time.Now().Format("15:04:05.000"),
	)
	_ = proxy.WriteBody(w, http.StatusOK, proxy.ContentTypeText, []byte(StartedMessage))
}
