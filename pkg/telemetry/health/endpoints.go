package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// StartupMessage is the body field returned by the startup probe when UP.
const StartupMessage = "BFF Startup Endpoint: Application is ready to serve traffic"

// VersionInfo contains build and version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "1.0.0")
	Version string `json:"version"`

	// Commit is the git commit hash
	Commit string `json:"commit"`

	// BuildTime is when the binary was built
	BuildTime string `json:"build_time"`

	// GoVersion is the Go version used to build
	GoVersion string `json:"go_version"`
}

// startupResponse is the startup probe body.
type startupResponse struct {
	StartupEndpoint string `json:"StartupEndpoint,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// LivenessHandler returns the liveness probe handler. It always answers 200
// while the process can serve HTTP.
//
//	{"status": "ok", "timestamp": "2026-10-19T10:30:00Z"}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		writeJSON(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler returns the readiness probe handler. It runs every
// registered check and answers 503 when any of them fails.
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "audit": {"status": "ok", "state": "12 records", "duration_ms": 0},
//	        "startup": {"status": "unhealthy", "state": "DOWN", "message": "startup gate is down: reference metadata unavailable", "duration_ms": 0}
//	    },
//	    "timestamp": "2026-10-19T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		report := c.CheckReadiness(r.Context())

		code := http.StatusOK
		if !report.Ready() {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, report)
	}
}

// StartupHandler returns the startup probe handler backed by the gate.
//
// UP answers 200 with {"StartupEndpoint": StartupMessage}. DOWN answers 503
// with the reason.
func StartupHandler(gate *StartupGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if gate.IsUp() {
			writeJSON(w, r, http.StatusOK, startupResponse{StartupEndpoint: StartupMessage})
			return
		}
		writeJSON(w, r, http.StatusServiceUnavailable, startupResponse{Reason: gate.Reason()})
	}
}

// VersionHandler returns the build information handler.
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		writeJSON(w, r, http.StatusOK, info)
	}
}

// Handlers bundles the probe handlers.
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc
	Startup   http.HandlerFunc
	Version   http.HandlerFunc
}

// CreateHandlers creates every probe handler at once.
//
//	handlers := checker.CreateHandlers(gate, "1.0.0", "abc123", "2026-10-19")
//	r.Get("/health", handlers.Liveness)
//	r.Get("/startup", handlers.Startup)
func (c *Checker) CreateHandlers(gate *StartupGate, version, commit, buildTime string) Handlers {
	return Handlers{
		Liveness:  c.LivenessHandler(),
		Readiness: c.ReadinessHandler(),
		Startup:   StartupHandler(gate),
		Version:   VersionHandler(version, commit, buildTime),
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
