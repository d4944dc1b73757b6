package faulty

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"quotes-hq/bff/pkg/config"
)

func TestService_Root(t *testing.T) {
	svc := NewService(&config.FaultyServiceConfig{}, nil)

	w := httptest.NewRecorder()
	svc.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
	}
	if w.Body.String() != WorkingMessage {
		t.Errorf("Body = %q, want %q", w.Body.String(), WorkingMessage)
	}
}

func TestService_FailureRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		roll  float64
		want  int
	}{
		{name: "roll under ratio fails", ratio: 0.5, roll: 0.1, want: http.StatusServiceUnavailable},
		{name: "roll over ratio succeeds", ratio: 0.5, roll: 0.9, want: http.StatusOK},
		{name: "zero ratio never fails", ratio: 0, roll: 0, want: http.StatusOK},
		{name: "ratio one always fails", ratio: 1, roll: 0.999, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&config.FaultyServiceConfig{FailureRatio: tt.ratio}, nil,
				WithRandom(func() float64 { return tt.roll }))

			w := httptest.NewRecorder()
			svc.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if w.Code != tt.want {
				t.Errorf("Status code = %v, want %v", w.Code, tt.want)
			}
		})
	}
}

func TestService_Start(t *testing.T) {
	svc := NewService(&config.FaultyServiceConfig{}, nil)

	w := httptest.NewRecorder()
	svc.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/start", nil))

	if w.Body.String() != StartedMessage {
		t.Errorf("Body = %q, want %q", w.Body.String(), StartedMessage)
	}
}
