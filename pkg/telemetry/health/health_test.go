package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func passing(state string) CheckFunc {
	return func(context.Context) (string, error) { return state, nil }
}

func failing(err error) CheckFunc {
	return func(context.Context) (string, error) { return "", err }
}

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{"default timeout", 0, 5 * time.Second},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)

			if checker.timeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.timeout)
			}
		})
	}
}

func TestRegisterCheck_Replaces(t *testing.T) {
	checker := New(time.Second)

	checker.RegisterCheck(CheckAudit, passing("0 records"))
	checker.RegisterCheck(CheckStartup, passing(StateUp))
	checker.RegisterCheck(CheckAudit, failing(errors.New("database is locked")))

	report := checker.CheckReadiness(context.Background())

	if len(report.Checks) != 2 {
		t.Fatalf("expected 2 results, got %v", report.Checks)
	}
	if got := report.Checks[CheckAudit]; got.Status != StatusUnhealthy || got.Message != "database is locked" {
		t.Errorf("audit result = %+v, want the replacing check", got)
	}
}

func TestCheckLiveness(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck(CheckAudit, failing(errors.New("down")))

	report := checker.CheckLiveness(context.Background())

	if report.Status != StatusOK {
		t.Errorf("expected status %q, got %q", StatusOK, report.Status)
	}
	if len(report.Checks) != 0 {
		t.Errorf("liveness ran checks: %v", report.Checks)
	}
	if report.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[CheckName]CheckFunc
		want   Status
	}{
		{
			name: "no checks",
			want: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[CheckName]CheckFunc{
				CheckAudit:   passing("3 records"),
				CheckStartup: passing(StateUp),
			},
			want: StatusReady,
		},
		{
			name: "startup down",
			checks: map[CheckName]CheckFunc{
				CheckAudit:   passing("3 records"),
				CheckStartup: failing(ErrGateDown),
			},
			want: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			report := checker.CheckReadiness(context.Background())

			if report.Status != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, report.Status)
			}
			if report.Ready() != (tt.want == StatusReady) {
				t.Errorf("Ready() = %v for status %q", report.Ready(), report.Status)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Errorf("expected %d results, got %d", len(tt.checks), len(report.Checks))
			}
		})
	}
}

func TestCheckReadiness_ReportsState(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck(CheckAudit, passing("12 records"))

	report := checker.CheckReadiness(context.Background())

	got := report.Checks[CheckAudit]
	if got.Status != StatusOK || got.State != "12 records" {
		t.Errorf("audit result = %+v", got)
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck(CheckAudit, func(ctx context.Context) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return "late", nil
	})

	start := time.Now()
	report := checker.CheckReadiness(context.Background())

	if time.Since(start) > 150*time.Millisecond {
		t.Error("readiness waited for a check past its timeout")
	}
	if got := report.Checks[CheckAudit]; got.Status != StatusUnhealthy || got.Message != ErrCheckTimeout.Error() {
		t.Errorf("expected timeout result, got %+v", got)
	}
}

func TestStartupGate_ReadinessCheck(t *testing.T) {
	gate := NewStartupGate(nil)
	checker := New(time.Second)
	checker.RegisterCheck(CheckStartup, gate.ReadinessCheck())

	gate.Latch("quotes_url not configured")
	got := checker.CheckReadiness(context.Background()).Checks[CheckStartup]
	if got.Status != StatusUnhealthy || got.State != StateDown {
		t.Errorf("DOWN result = %+v", got)
	}
	if !strings.Contains(got.Message, "quotes_url not configured") {
		t.Errorf("message %q does not carry the gate reason", got.Message)
	}

	gate = NewStartupGate(nil)
	checker.RegisterCheck(CheckStartup, gate.ReadinessCheck())
	gate.Up()
	got = checker.CheckReadiness(context.Background()).Checks[CheckStartup]
	if got.Status != StatusOK || got.State != StateUp || got.Message != "" {
		t.Errorf("UP result = %+v", got)
	}
}

func TestStartupGate(t *testing.T) {
	var transitions []bool
	gate := NewStartupGate(func(up bool) { transitions = append(transitions, up) })

	if gate.IsUp() {
		t.Fatal("new gate should be DOWN")
	}
	if err := gate.Check(); err == nil {
		t.Error("Check() should fail while DOWN")
	}

	if !gate.Up() {
		t.Fatal("Up() refused on an unlatched gate")
	}
	if !gate.IsUp() || gate.Reason() != "" {
		t.Errorf("gate up=%v reason=%q after Up()", gate.IsUp(), gate.Reason())
	}

	gate.Down("reference metadata unreachable")
	if gate.IsUp() {
		t.Error("gate still UP after Down()")
	}
	if !strings.Contains(gate.Check().Error(), "reference metadata unreachable") {
		t.Errorf("Check() = %v, want reason", gate.Check())
	}

	want := []bool{false, true, false}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestStartupGate_LatchedNeverUp(t *testing.T) {
	gate := NewStartupGate(nil)

	gate.Latch("quotes_url is not configured")

	if gate.Up() {
		t.Error("Up() succeeded on a latched gate")
	}
	if gate.IsUp() {
		t.Error("latched gate reports UP")
	}
	if gate.Reason() != "quotes_url is not configured" {
		t.Errorf("Reason() = %q", gate.Reason())
	}
}

func TestStartupHandler(t *testing.T) {
	gate := NewStartupGate(nil)
	handler := StartupHandler(gate)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/startup", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("DOWN status = %d, want 503", w.Code)
	}

	gate.Up()

	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/startup", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("UP status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["StartupEndpoint"] != StartupMessage {
		t.Errorf("StartupEndpoint = %q", body["StartupEndpoint"])
	}
}

func TestReadinessHandler(t *testing.T) {
	gate := NewStartupGate(nil)
	checker := New(time.Second)
	checker.RegisterCheck(CheckStartup, gate.ReadinessCheck())
	handler := checker.ReadinessHandler()

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 while gate DOWN", w.Code)
	}

	gate.Up()

	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 while gate UP", w.Code)
	}

	var report Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != StatusReady || report.Checks[CheckStartup].State != StateUp {
		t.Errorf("unexpected readiness body: %+v", report)
	}
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	checker := New(time.Second)
	handlers := checker.CreateHandlers(NewStartupGate(nil), "1.0.0", "abc", "now")

	for name, h := range map[string]http.HandlerFunc{
		"liveness":  handlers.Liveness,
		"readiness": handlers.Readiness,
		"startup":   handlers.Startup,
		"version":   handlers.Version,
	} {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s POST status = %d, want 405", name, w.Code)
		}
	}
}

func TestLivenessHandler_Head(t *testing.T) {
	checker := New(time.Second)

	w := httptest.NewRecorder()
	checker.LivenessHandler()(w, httptest.NewRequest(http.MethodHead, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Error("HEAD response carried a body")
	}
}

func TestVersionHandler(t *testing.T) {
	w := httptest.NewRecorder()
	VersionHandler("1.2.3", "deadbeef", "2026-10-19")(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "deadbeef" || info.GoVersion == "" {
		t.Errorf("unexpected version info: %+v", info)
	}
}
