package recorder

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/audit/storage"
	"quotes-hq/bff/pkg/config"
	"quotes-hq/bff/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// blockingStorage blocks every Store until release is closed.
type blockingStorage struct {
	*storage.MemoryStorage
	release chan struct{}
}

func (b *blockingStorage) Store(ctx context.Context, record *audit.Record) error {
	<-b.release
	return b.MemoryStorage.Store(ctx, record)
}

type failingStorage struct {
	*storage.MemoryStorage
}

func (failingStorage) Store(context.Context, *audit.Record) error {
	return errors.New("disk full")
}

func TestRecorder_WritesRecords(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := New(store, Config{BufferSize: 10}, nil)

	for i := 0; i < 5; i++ {
		if err := r.Record(context.Background(), &audit.Record{Action: audit.ActionCreate, Status: 200}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	r.Close()

	records, _ := store.List(context.Background(), 0)
	if len(records) != 5 {
		t.Fatalf("stored %d records, want 5", len(records))
	}
	for _, rec := range records {
		if rec.ID == "" || rec.Created.IsZero() {
			t.Errorf("record missing ID or Created: %+v", rec)
		}
	}
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, prometheus.NewRegistry())
	store := &blockingStorage{MemoryStorage: storage.NewMemoryStorage(), release: make(chan struct{})}
	r := New(store, Config{BufferSize: 1}, collector)

	// The first record is taken by the writer, the second fills the buffer.
	_ = r.Record(context.Background(), &audit.Record{Action: audit.ActionCreate})
	deadline := time.Now().Add(time.Second)
	for r.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	_ = r.Record(context.Background(), &audit.Record{Action: audit.ActionCreate})

	start := time.Now()
	err := r.Record(context.Background(), &audit.Record{Action: audit.ActionDelete})
	if !errors.Is(err, ErrBufferFull) {
		t.Errorf("Record() error = %v, want ErrBufferFull", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("Record() blocked on a full buffer")
	}

	close(store.release)
	r.Close()

	expected := `
# HELP test_bff_audit_dropped_total Audit records dropped because the write buffer was full
# TYPE test_bff_audit_dropped_total counter
test_bff_audit_dropped_total 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "test_bff_audit_dropped_total"); err != nil {
		t.Error(err)
	}
}

func TestRecorder_StoreFailureDoesNotStop(t *testing.T) {
	r := New(failingStorage{storage.NewMemoryStorage()}, Config{}, nil)

	for i := 0; i < 3; i++ {
		if err := r.Record(context.Background(), &audit.Record{Action: audit.ActionCreate}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	r := New(storage.NewMemoryStorage(), Config{}, nil)
	r.Close()
	r.Close()

	if err := r.Record(context.Background(), &audit.Record{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Record() after Close error = %v, want ErrClosed", err)
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := New(store, Config{BufferSize: 1000}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = r.Record(context.Background(), &audit.Record{Action: audit.ActionCreate})
			}
		}()
	}
	wg.Wait()
	r.Close()

	count, _ := store.Count(context.Background())
	if count != 200 {
		t.Errorf("stored %d records, want 200", count)
	}
}

func TestRecorder_UsesConfiguredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := New(failingStorage{storage.NewMemoryStorage()}, Config{BufferSize: 1, Logger: logger}, nil)
	if err := r.Record(context.Background(), &audit.Record{Action: audit.ActionDelete, RequestID: "req-9"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	r.Close()

	out := buf.String()
	for _, want := range []string{"audit recorder initialized", "failed to store audit record", "component=audit.recorder", "request_id=req-9"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	if err := r.Record(context.Background(), &audit.Record{}); err != nil {
		t.Errorf("nil Record() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}
