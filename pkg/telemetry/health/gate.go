package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// StartupGate records whether the server finished initialization with its
// mandatory upstreams reachable. It is written by the server lifecycle and
// read by probes; request handlers never consult it.
//
// The zero value is DOWN with no reason.
type StartupGate struct {
	up atomic.Bool

	// latched is set by a configuration failure; a latched gate ignores Up.
	latched atomic.Bool

	mu     sync.RWMutex
	reason string

	// onChange observes every transition; used for the startup gauge.
	onChange func(up bool)
}

// Gate states reported by the startup readiness check.
const (
	StateUp   = "UP"
	StateDown = "DOWN"
)

// ErrGateDown is returned, possibly wrapped with the reason, by Check
// while the gate is DOWN.
var ErrGateDown = errors.New("startup gate is down")

// NewStartupGate returns a DOWN gate. onChange may be nil.
func NewStartupGate(onChange func(up bool)) *StartupGate {
	g := &StartupGate{
		reason:   "initializing",
		onChange: onChange,
	}
	g.notify(false)
	return g
}

// Up marks the gate UP. It returns false and leaves the gate DOWN if a
// configuration failure was recorded with Latch.
func (g *StartupGate) Up() bool {
	if g.latched.Load() {
		return false
	}

	g.mu.Lock()
	g.reason = ""
	g.mu.Unlock()

	g.up.Store(true)
	g.notify(true)
	return true
}

// Down marks the gate DOWN with a reason.
func (g *StartupGate) Down(reason string) {
	g.mu.Lock()
	g.reason = reason
	g.mu.Unlock()

	g.up.Store(false)
	g.notify(false)
}

// Latch marks the gate DOWN for a configuration failure. A latched gate is
// never flipped back UP for the lifetime of the process.
func (g *StartupGate) Latch(reason string) {
	g.latched.Store(true)
	g.Down(reason)
}

// IsUp reports whether the gate is UP.
func (g *StartupGate) IsUp() bool {
	return g.up.Load()
}

// Reason returns why the gate is DOWN, or "" when UP.
func (g *StartupGate) Reason() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reason
}

// State returns StateUp or StateDown.
func (g *StartupGate) State() string {
	if g.IsUp() {
		return StateUp
	}
	return StateDown
}

// ReadinessCheck reports the gate state and fails while the gate is DOWN.
//
//	checker.RegisterCheck(health.CheckStartup, gate.ReadinessCheck())
func (g *StartupGate) ReadinessCheck() CheckFunc {
	return func(context.Context) (string, error) {
		return g.State(), g.Check()
	}
}

// Check returns nil while the gate is UP and the reason otherwise.
func (g *StartupGate) Check() error {
	if g.IsUp() {
		return nil
	}
	if reason := g.Reason(); reason != "" {
		return fmt.Errorf("%w: %s", ErrGateDown, reason)
	}
	return ErrGateDown
}

func (g *StartupGate) notify(up bool) {
	if g.onChange != nil {
		g.onChange(up)
	}
}
