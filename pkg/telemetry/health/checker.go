package health

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CheckName identifies a readiness check.
type CheckName string

// Readiness checks registered by the BFF server.
const (
	CheckStartup CheckName = "startup"
	CheckAudit   CheckName = "audit"
)

// Status is the outcome of a report or of a single check.
type Status string

// Check statuses, then report statuses.
const (
	StatusOK        Status = "ok"
	StatusUnhealthy Status = "unhealthy"

	StatusReady    Status = "ready"
	StatusDegraded Status = "degraded"
)

// CheckFunc checks one component. state describes the component as it is
// now, such as "UP" or "12 records", and is reported even when err is set.
type CheckFunc func(ctx context.Context) (state string, err error)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status     Status `json:"status"`
	State      string `json:"state,omitempty"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Report is the body of the liveness and readiness endpoints.
type Report struct {
	Status    Status                    `json:"status"`
	Checks    map[CheckName]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time                 `json:"timestamp"`
}

// Ready reports whether every check passed.
func (r Report) Ready() bool {
	return r.Status != StatusDegraded
}

// ErrCheckTimeout is reported when a check outlives its timeout.
var ErrCheckTimeout = errors.New("health check timeout")

// Checker runs the readiness checks.
type Checker struct {
	mu      sync.RWMutex
	checks  map[CheckName]CheckFunc
	timeout time.Duration
}

// New creates a checker. A zero timeout means 5 seconds per check.
func New(timeout time.Duration) *Checker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Checker{
		checks:  make(map[CheckName]CheckFunc),
		timeout: timeout,
	}
}

// RegisterCheck adds a readiness check, replacing any check of that name.
func (c *Checker) RegisterCheck(name CheckName, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// CheckLiveness reports the process as alive. It runs no checks, so a DOWN
// startup gate never restarts the container.
func (c *Checker) CheckLiveness(ctx context.Context) Report {
	return Report{Status: StatusOK, Timestamp: time.Now()}
}

// CheckReadiness runs every check concurrently. The report is degraded
// when any check fails or times out.
func (c *Checker) CheckReadiness(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[CheckName]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	type namedResult struct {
		name   CheckName
		result CheckResult
	}

	results := make(chan namedResult, len(checks))
	for name, check := range checks {
		go func() {
			results <- namedResult{name: name, result: c.run(ctx, check)}
		}()
	}

	report := Report{
		Status: StatusReady,
		Checks: make(map[CheckName]CheckResult, len(checks)),
	}
	for range checks {
		r := <-results
		report.Checks[r.name] = r.result
		if r.result.Status == StatusUnhealthy {
			report.Status = StatusDegraded
		}
	}
	report.Timestamp = time.Now()

	return report
}

// run executes one check. The check runs in its own goroutine so one that
// ignores ctx still cannot hold the request past the timeout.
func (c *Checker) run(ctx context.Context, check CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		state string
		err   error
	}

	start := time.Now()
	done := make(chan outcome, 1)
	go func() {
		state, err := check(ctx)
		done <- outcome{state: state, err: err}
	}()

	select {
	case o := <-done:
		result := CheckResult{
			Status:     StatusOK,
			State:      o.state,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if o.err != nil {
			result.Status = StatusUnhealthy
			result.Message = o.err.Error()
		}
		return result

	case <-ctx.Done():
		return CheckResult{
			Status:     StatusUnhealthy,
			Message:    ErrCheckTimeout.Error(),
			DurationMs: time.Since(start).Milliseconds(),
		}
	}
}
