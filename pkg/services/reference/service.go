// Package reference implements the reference data service. Its /metadata
// endpoint is the dependency the BFF probes once at startup.
package reference

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"quotes-hq/bff/pkg/config"
	"quotes-hq/bff/pkg/proxy"
	"quotes-hq/bff/pkg/proxy/middleware"
	"quotes-hq/bff/pkg/services"
)

// StartedMessage is the body of GET /start.
const StartedMessage = "ReferenceController started"

// Service serves the reference data endpoints.
type Service struct {
	delay    time.Duration
	resolver Resolver
	logger   *slog.Logger
}

// NewService creates the reference service.
func NewService(cfg *config.ReferenceServiceConfig, resolver Resolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		delay:    cfg.Delay,
		resolver: resolver,
		logger:   logger,
	}
}

// Handler returns the service router.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RecoveryMiddleware,
		middleware.LoggingMiddleware(s.logger),
		middleware.RequestIDMiddleware,
	)

	r.Get("/metadata", s.handleMetadata)
	r.Get("/start", s.handleStart)

	return r
}

// handleMetadata answers with the resolved metadata after the configured
// artificial delay.
func (s *Service) handleMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	md := s.resolver.Resolve(ctx)

	if !services.Sleep(ctx, s.delay) {
		return
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, md); err != nil {
		s.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	s.logger.InfoContext(r.Context(), "executed start endpoint request",
		"at", time.Now().Format("15:04:05.000"),
	)
	_ = proxy.WriteBody(w, http.StatusOK, proxy.ContentTypeText, []byte(StartedMessage))
}
