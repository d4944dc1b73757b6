package proxy

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"quotes-hq/bff/internal/upstreamtest"
	"quotes-hq/bff/pkg/telemetry/health"
	"quotes-hq/bff/pkg/upstream"
)

const metadataBody = `{"projectID":"quotes-project","zone":"us-central1-a","instanceID":"00bf4bf02d"}`

func newTestClient(tokens *upstreamtest.Tokens) *upstream.Client {
	return upstream.NewClient(upstream.ClientConfig{
		ReadTimeout:    500 * time.Millisecond,
		WriteTimeout:   500 * time.Millisecond,
		ConnectTimeout: 500 * time.Millisecond,
	}, tokens)
}

func TestInitialize(t *testing.T) {
	reference := upstreamtest.NewServer()
	defer reference.Close()
	reference.Handle(http.MethodGet, "/metadata", upstreamtest.Response{Body: metadataBody})

	tokens := &upstreamtest.Tokens{}
	client := newTestClient(tokens)

	targets := upstream.Targets{
		Quotes:    upstream.Target{Name: upstream.TargetQuotes, BaseURL: "http://quotes.invalid"},
		Reference: upstream.Target{Name: upstream.TargetReference, BaseURL: reference.URL()},
	}

	var transitions []bool
	gate := health.NewStartupGate(func(up bool) { transitions = append(transitions, up) })
	store := &ReferenceMetadata{}

	if err := Initialize(context.Background(), client, targets, gate, store, nil); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if !gate.IsUp() {
		t.Errorf("gate is down: %s", gate.Reason())
	}
	if string(store.Raw()) != metadataBody {
		t.Errorf("metadata = %s", store.Raw())
	}
	if store.Fields()["zone"] != "us-central1-a" {
		t.Errorf("zone = %v", store.Fields()["zone"])
	}
	if got := tokens.Audiences(); len(got) != 1 || got[0] != reference.URL()+"/metadata" {
		t.Errorf("audiences = %v, want the metadata URL", got)
	}
	if len(transitions) != 2 || transitions[0] || !transitions[1] {
		t.Errorf("gate transitions = %v, want [false true]", transitions)
	}

	// Metadata is fetched once per process.
	if err := Initialize(context.Background(), client, targets, gate, store, nil); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if reference.RequestCount() != 1 {
		t.Errorf("metadata requests = %d, want 1", reference.RequestCount())
	}
}

func TestInitialize_ReferenceUnreachable(t *testing.T) {
	reference := upstreamtest.NewServer()
	reference.Close()

	targets := upstream.Targets{
		Quotes:    upstream.Target{Name: upstream.TargetQuotes, BaseURL: "http://quotes.invalid"},
		Reference: upstream.Target{Name: upstream.TargetReference, BaseURL: reference.URL()},
	}
	gate := health.NewStartupGate(nil)
	store := &ReferenceMetadata{}

	err := Initialize(context.Background(), newTestClient(&upstreamtest.Tokens{}), targets, gate, store, nil)
	if err == nil {
		t.Fatal("Initialize() error = nil, want failure")
	}

	if gate.IsUp() {
		t.Error("gate is up after failed metadata fetch")
	}
	if store.Available() {
		t.Error("metadata stored after failed fetch")
	}
}

func TestInitialize_MissingConfiguration(t *testing.T) {
	reference := upstreamtest.NewServer()
	defer reference.Close()
	reference.Handle(http.MethodGet, "/metadata", upstreamtest.Response{Body: metadataBody})

	t.Run("missing quotes URL latches the gate", func(t *testing.T) {
		targets := upstream.Targets{
			Reference: upstream.Target{Name: upstream.TargetReference, BaseURL: reference.URL()},
		}
		gate := health.NewStartupGate(nil)
		store := &ReferenceMetadata{}

		err := Initialize(context.Background(), newTestClient(&upstreamtest.Tokens{}), targets, gate, store, nil)
		if !errors.Is(err, ErrGateLatched) {
			t.Fatalf("Initialize() error = %v, want ErrGateLatched", err)
		}

		if gate.IsUp() {
			t.Error("gate is up without quotes_url")
		}
		if !store.Available() {
			t.Error("metadata should still be fetched when the reference URL is set")
		}
		if gate.Up() {
			t.Error("latched gate flipped back up")
		}
	})

	t.Run("missing reference URL", func(t *testing.T) {
		targets := upstream.Targets{
			Quotes: upstream.Target{Name: upstream.TargetQuotes, BaseURL: "http://quotes.invalid"},
		}
		gate := health.NewStartupGate(nil)
		tokens := &upstreamtest.Tokens{}

		err := Initialize(context.Background(), newTestClient(tokens), targets, gate, &ReferenceMetadata{}, nil)
		if !errors.Is(err, upstream.ErrNotConfigured) {
			t.Fatalf("Initialize() error = %v, want ErrNotConfigured", err)
		}

		if gate.IsUp() {
			t.Error("gate is up without reference_url")
		}
		if len(tokens.Audiences()) != 0 {
			t.Errorf("tokens minted without a reference URL: %v", tokens.Audiences())
		}
	})
}

func TestReferenceMetadata_NotJSON(t *testing.T) {
	var store ReferenceMetadata
	if store.Available() {
		t.Fatal("empty store reports metadata")
	}

	store.Set([]byte("plain text"))
	if !store.Available() {
		t.Fatal("Set did not store metadata")
	}
	if store.Fields() != nil {
		t.Errorf("Fields() = %v, want nil for non-JSON metadata", store.Fields())
	}
}
