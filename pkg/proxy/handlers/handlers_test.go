package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"quotes-hq/bff/internal/upstreamtest"
	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/audit/storage"
	"quotes-hq/bff/pkg/proxy"
	"quotes-hq/bff/pkg/upstream"
)

type recordingAudit struct {
	mu      sync.Mutex
	records []*audit.Record
}

func (a *recordingAudit) Record(ctx context.Context, record *audit.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
	return nil
}

func (a *recordingAudit) Records() []*audit.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*audit.Record(nil), a.records...)
}

type fixture struct {
	quotes *upstreamtest.Server
	faulty *upstreamtest.Server
	tokens *upstreamtest.Tokens
	audit  *recordingAudit
	meta   *proxy.ReferenceMetadata
	router *chi.Mux
}

func newFixture(t *testing.T, readTimeout time.Duration, mutate func(*Options)) *fixture {
	t.Helper()

	f := &fixture{
		quotes: upstreamtest.NewServer(),
		faulty: upstreamtest.NewServer(),
		tokens: &upstreamtest.Tokens{},
		audit:  &recordingAudit{},
		meta:   &proxy.ReferenceMetadata{},
	}
	t.Cleanup(f.quotes.Close)
	t.Cleanup(f.faulty.Close)

	client := upstream.NewClient(upstream.ClientConfig{
		ReadTimeout:    readTimeout,
		WriteTimeout:   time.Second,
		ConnectTimeout: time.Second,
	}, f.tokens)

	opts := Options{
		Upstream: client,
		Targets: upstream.Targets{
			Quotes: upstream.Target{Name: upstream.TargetQuotes, BaseURL: f.quotes.URL()},
			Faulty: upstream.Target{Name: upstream.TargetFaulty, BaseURL: f.faulty.URL()},
		},
		Metadata: f.meta,
		Audit:    f.audit,
	}
	if mutate != nil {
		mutate(&opts)
	}

	f.router = chi.NewRouter()
	New(opts).Routes(f.router)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGetQuotes(t *testing.T) {
	f := newFixture(t, time.Second, nil)
	f.quotes.Handle(http.MethodGet, "/quotes", upstreamtest.Response{Body: `[{"id":1,"author":"Le Guin"}]`})

	w := f.do(http.MethodGet, "/quotes", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}
	if w.Body.String() != `[{"id":1,"author":"Le Guin"}]` {
		t.Errorf("Body = %s", w.Body.String())
	}

	reqs := f.quotes.Requests()
	if len(reqs) != 1 {
		t.Fatalf("upstream requests = %d, want 1", len(reqs))
	}
	if want := upstreamtest.BearerFor(f.quotes.URL() + "/quotes"); reqs[0].Authorization != want {
		t.Errorf("Authorization = %q, want %q", reqs[0].Authorization, want)
	}
}

func TestGetQuotes_UpstreamErrorStatusStill200(t *testing.T) {
	f := newFixture(t, time.Second, nil)
	f.quotes.Handle(http.MethodGet, "/quotes", upstreamtest.Response{
		StatusCode: http.StatusServiceUnavailable,
		Body:       "database unavailable",
	})

	w := f.do(http.MethodGet, "/quotes", "")

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
	}
	if w.Body.String() != "database unavailable" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestGetQuotes_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		setup  func(*fixture)
	}{
		{
			name: "read timeout",
			setup: func(f *fixture) {
				f.quotes.Handle(http.MethodGet, "/quotes", upstreamtest.Response{Body: "[]", Delay: time.Second})
			},
		},
		{
			name: "token failure",
			setup: func(f *fixture) {
				f.tokens.Err = errors.New("metadata server unreachable")
			},
		},
		{
			name: "not configured",
			mutate: func(o *Options) {
				o.Targets.Quotes.BaseURL = ""
			},
		},
		{
			name: "connection refused",
			setup: func(f *fixture) {
				f.quotes.Close()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 150*time.Millisecond, tt.mutate)
			if tt.setup != nil {
				tt.setup(f)
			}

			start := time.Now()
			w := f.do(http.MethodGet, "/quotes", "")

			if w.Code != http.StatusInternalServerError {
				t.Errorf("Status code = %v, want %v", w.Code, http.StatusInternalServerError)
			}
			if w.Body.Len() != 0 {
				t.Errorf("Body = %q, want empty", w.Body.String())
			}
			if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
				t.Errorf("request took %v, want it bounded by the read timeout", elapsed)
			}
		})
	}
}

func TestCreateQuote(t *testing.T) {
	f := newFixture(t, time.Second, nil)
	f.quotes.Handle(http.MethodPost, "/quotes", upstreamtest.Response{
		StatusCode: http.StatusCreated,
		Body:       `{"id":42}`,
	})

	w := f.do(http.MethodPost, "/quotes", `{"id":7,"author":"Octavia E. Butler","quote":"All that you touch you change.","book":"Parable of the Sower","extra":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}
	if w.Body.String() != `{"id":42}` {
		t.Errorf("Body = %s", w.Body.String())
	}

	reqs := f.quotes.Requests()
	if len(reqs) != 1 {
		t.Fatalf("upstream requests = %d, want 1", len(reqs))
	}
	if reqs[0].ContentType != upstream.JSONContentType {
		t.Errorf("Content-Type = %q", reqs[0].ContentType)
	}

	var forwarded map[string]any
	if err := json.Unmarshal(reqs[0].Body, &forwarded); err != nil {
		t.Fatalf("forwarded body is not JSON: %v", err)
	}
	if len(forwarded) != 3 {
		t.Errorf("forwarded fields = %v, want author, quote and book only", forwarded)
	}
	if forwarded["author"] != "Octavia E. Butler" || forwarded["book"] != "Parable of the Sower" {
		t.Errorf("forwarded = %v", forwarded)
	}

	records := f.audit.Records()
	if len(records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(records))
	}
	if records[0].Action != audit.ActionCreate || records[0].Status != http.StatusCreated {
		t.Errorf("audit record = %+v", records[0])
	}
}

func TestCreateQuote_InvalidBody(t *testing.T) {
	f := newFixture(t, time.Second, nil)

	for _, body := range []string{`{"author":`, `[1,2]`, `{"author":1}`} {
		w := f.do(http.MethodPost, "/quotes", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: Status code = %v, want %v", body, w.Code, http.StatusBadRequest)
		}
	}

	if f.quotes.RequestCount() != 0 {
		t.Errorf("upstream requests = %d, want 0", f.quotes.RequestCount())
	}
	if len(f.tokens.Audiences()) != 0 {
		t.Error("token minted for a rejected request")
	}
}

func TestCreateQuote_UpstreamFailure(t *testing.T) {
	f := newFixture(t, time.Second, nil)
	f.quotes.Close()

	w := f.do(http.MethodPost, "/quotes", `{"author":"a","quote":"q","book":"b"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusInternalServerError)
	}
	if len(f.audit.Records()) != 0 {
		t.Error("failed create was audited")
	}
}

func TestDeleteQuote(t *testing.T) {
	f := newFixture(t, time.Second, nil)
	f.quotes.Handle(http.MethodDelete, "/quotes/1", upstreamtest.Response{StatusCode: http.StatusNoContent})

	tests := []struct {
		path string
		want int
	}{
		{path: "/quotes/1", want: http.StatusNoContent},
		{path: "/quotes/999", want: http.StatusNotFound},
		{path: "/quotes/abc", want: http.StatusBadRequest},
		{path: "/quotes/1.5", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := f.do(http.MethodDelete, tt.path, "")
			if w.Code != tt.want {
				t.Errorf("Status code = %v, want %v", w.Code, tt.want)
			}
		})
	}

	wantAudiences := []string{f.quotes.URL() + "/quotes/1", f.quotes.URL() + "/quotes/999"}
	got := f.tokens.Audiences()
	if len(got) != len(wantAudiences) {
		t.Fatalf("audiences = %v, want %v", got, wantAudiences)
	}
	for i := range wantAudiences {
		if got[i] != wantAudiences[i] {
			t.Errorf("audience[%d] = %q, want %q", i, got[i], wantAudiences[i])
		}
	}

	records := f.audit.Records()
	if len(records) != 1 || records[0].QuoteID != 1 || records[0].Action != audit.ActionDelete {
		t.Errorf("audit records = %+v, want one delete of quote 1", records)
	}
}

func TestGetFaulty(t *testing.T) {
	f := newFixture(t, time.Second, nil)
	f.faulty.Handle(http.MethodGet, "/", upstreamtest.Response{Body: "Working as intended"})

	w := f.do(http.MethodGet, "/faulty", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}
	if w.Body.String() != "Working as intended" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if got := f.tokens.Audiences(); len(got) != 1 || got[0] != f.faulty.URL()+"/" {
		t.Errorf("audiences = %v, want [%s/]", got, f.faulty.URL())
	}
}

func TestStart(t *testing.T) {
	f := newFixture(t, time.Second, nil)

	w := f.do(http.MethodGet, "/start", "")
	if w.Code != http.StatusOK || w.Body.String() != StartedDegradedMessage {
		t.Errorf("before metadata: %d %q", w.Code, w.Body.String())
	}

	f.meta.Set([]byte(`{"projectID":"p"}`))

	w = f.do(http.MethodGet, "/start", "")
	if w.Code != http.StatusOK || w.Body.String() != StartedMessage {
		t.Errorf("after metadata: %d %q", w.Code, w.Body.String())
	}
}

func TestListAudit(t *testing.T) {
	store := storage.NewMemoryStorage()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		if err := store.Store(context.Background(), &audit.Record{
			ID:      string(rune('a' + i)),
			Action:  audit.ActionDelete,
			QuoteID: i,
			Status:  http.StatusNoContent,
			Created: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	f := newFixture(t, time.Second, func(o *Options) { o.AuditLog = store })

	w := f.do(http.MethodGet, "/audit?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}

	var records []*audit.Record
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("response is not a record list: %v", err)
	}
	if len(records) != 2 || records[0].QuoteID != 3 || records[1].QuoteID != 2 {
		t.Errorf("records = %+v, want quotes 3 and 2", records)
	}

	for _, q := range []string{"limit=0", "limit=abc", "limit=501"} {
		if w := f.do(http.MethodGet, "/audit?"+q, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: Status code = %v, want %v", q, w.Code, http.StatusBadRequest)
		}
	}
}

func TestListAudit_Empty(t *testing.T) {
	f := newFixture(t, time.Second, func(o *Options) { o.AuditLog = storage.NewMemoryStorage() })

	w := f.do(http.MethodGet, "/audit", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Body = %q, want []", w.Body.String())
	}
}

func TestListAudit_NotMounted(t *testing.T) {
	f := newFixture(t, time.Second, nil)

	if w := f.do(http.MethodGet, "/audit", ""); w.Code != http.StatusNotFound {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusNotFound)
	}
}
