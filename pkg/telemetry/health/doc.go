// Package health provides the probe endpoints and the startup gate.
//
// # Endpoints
//
//   - /health: liveness, always 200
//   - /ready: readiness, runs registered checks, 503 when any fails
//   - /startup: 200 while the StartupGate is UP, 503 otherwise
//   - /version: build information
//
// # Startup gate
//
// The server initialization marks the gate UP once the reference metadata
// was fetched, or DOWN with a reason. A DOWN caused by missing upstream
// configuration is latched and never flips back.
//
//	gate := health.NewStartupGate(collector.SetStartupGate)
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck(health.CheckStartup, gate.ReadinessCheck())
//
// Each readiness check reports the component state next to its status, so
// /ready shows the gate as UP or DOWN with the reason it is down.
package health
