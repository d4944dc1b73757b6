package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/telemetry/metrics"
)

// ErrBufferFull is returned by Record when the write buffer is full and the
// record was dropped.
var ErrBufferFull = errors.New("audit buffer full, record dropped")

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("audit recorder closed")

// Config configures the recorder.
type Config struct {
	// BufferSize is the capacity of the write channel.
	// Default: 1000
	BufferSize int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// Logger receives the recorder's logs, tagged component=audit.recorder.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Recorder writes audit records to storage from a background goroutine.
// Record never blocks: when the buffer is full the record is dropped and
// counted.
type Recorder struct {
	storage audit.Storage
	config  Config
	metrics *metrics.Collector
	logger  *slog.Logger

	records chan *audit.Record
	done    chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// New creates a recorder and starts its writer.
func New(storage audit.Storage, cfg Config, collector *metrics.Collector) *Recorder {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage: storage,
		config:  cfg,
		metrics: collector,
		logger:  logger.With("component", "audit.recorder"),
		records: make(chan *audit.Record, cfg.BufferSize),
		done:    make(chan struct{}),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"buffer_size", cfg.BufferSize,
		"write_timeout", cfg.WriteTimeout,
	)

	return r
}

// Record enqueues record. The ID and creation time are filled in when
// empty. A nil Recorder ignores the call.
func (r *Recorder) Record(ctx context.Context, record *audit.Record) error {
	if r == nil {
		return nil
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Created.IsZero() {
		record.Created = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrClosed
	}

	select {
	case r.records <- record:
		return nil
	default:
		r.metrics.RecordAuditDropped()
		r.logger.WarnContext(ctx, "audit buffer full, dropping record",
			"record_id", record.ID,
			"action", record.Action,
			"buffer_size", r.config.BufferSize,
		)
		return ErrBufferFull
	}
}

// Close stops accepting records, writes everything still buffered and
// waits for the writer to exit.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}

	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		close(r.done)
		r.wg.Wait()
		r.logger.Info("audit recorder shut down")
	})
	return nil
}

// Pending returns the number of buffered records.
func (r *Recorder) Pending() int {
	return len(r.records)
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.records:
			r.write(record)

		case <-r.done:
			for {
				select {
				case record := <-r.records:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *audit.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.metrics.RecordAuditWrite("error")
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}
	r.metrics.RecordAuditWrite("ok")

	duration := time.Since(start)
	r.logger.Debug("audit record written",
		"record_id", record.ID,
		"action", record.Action,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
		)
	}
}
