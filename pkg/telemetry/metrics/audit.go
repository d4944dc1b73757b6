package metrics

import (
	"quotes-hq/bff/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks the audit trail writer.
type AuditMetrics struct {
	writesTotal  *prometheus.CounterVec
	droppedTotal prometheus.Counter
	prunedTotal  prometheus.Counter
}

// NewAuditMetrics creates and registers audit metrics with the provided registry.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_writes_total",
				Help:      "Total number of audit record writes by outcome",
			},
			[]string{"outcome"},
		),
		droppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "audit_dropped_total",
			Help:      "Audit records dropped because the write buffer was full",
		}),
		prunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "audit_pruned_total",
			Help:      "Audit records removed by retention",
		}),
	}

	registry.MustRegister(am.writesTotal, am.droppedTotal, am.prunedTotal)

	return am
}

// RecordWrite records one write outcome ("ok" or "error").
func (am *AuditMetrics) RecordWrite(outcome string) {
	am.writesTotal.WithLabelValues(outcome).Inc()
}

// RecordDropped records one dropped record.
func (am *AuditMetrics) RecordDropped() {
	am.droppedTotal.Inc()
}

// RecordPruned records pruned records.
func (am *AuditMetrics) RecordPruned(n int64) {
	if n > 0 {
		am.prunedTotal.Add(float64(n))
	}
}
