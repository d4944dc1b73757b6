package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/telemetry/metrics"
)

// Config configures retention.
type Config struct {
	// RetentionDays is how long records are kept. Zero keeps them forever.
	RetentionDays int

	// PruneSchedule is a standard five-field cron expression, e.g.
	// "0 3 * * *" for daily at 3 AM. Empty disables scheduled pruning.
	PruneSchedule string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Pruner deletes audit records older than the retention period, either on
// demand or on a cron schedule.
type Pruner struct {
	storage audit.Storage
	config  Config
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewPruner creates a Pruner.
func NewPruner(storage audit.Storage, cfg Config, collector *metrics.Collector) *Pruner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pruner{
		storage: storage,
		config:  cfg,
		metrics: collector,
		logger:  logger.With("component", "audit.retention"),
		now:     time.Now,
		cron:    cron.New(),
	}
}

// Prune deletes records older than RetentionDays and returns how many were
// removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
	deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit records older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	p.metrics.RecordAuditPruned(deleted)
	return deleted, nil
}

// Start schedules Prune on PruneSchedule until ctx is done or Stop is
// called. An empty schedule or zero retention does nothing.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.PruneSchedule == "" || p.config.RetentionDays <= 0 {
		p.logger.Info("audit retention disabled",
			"schedule", p.config.PruneSchedule,
			"retention_days", p.config.RetentionDays,
		)
		return nil
	}

	if _, err := cron.ParseStandard(p.config.PruneSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.config.PruneSchedule, err)
	}

	if _, err := p.cron.AddFunc(p.config.PruneSchedule, func() { p.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("audit retention scheduled",
		"schedule", p.config.PruneSchedule,
		"retention_days", p.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Stop stops the schedule and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	<-p.cron.Stop().Done()
	p.running = false
	p.logger.Info("audit retention stopped")
}

// NextRun returns the next scheduled prune, or the zero time when none is
// scheduled.
func (p *Pruner) NextRun() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (p *Pruner) run(ctx context.Context) {
	deleted, err := p.Prune(ctx)
	if err != nil {
		p.logger.Error("scheduled audit pruning failed", "error", err)
		return
	}
	p.logger.Info("scheduled audit pruning completed", "deleted_count", deleted)
}
