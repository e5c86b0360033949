// Package chaos provides a Lorenz-attractor modulation source. Its start-up
// transient is audible as a slow drift, so engines run WarmUp during prepare.
package chaos

import (
	"github.com/cwbudde/algo-fxcore/dsp/core"
)

const (
	sigma = 10.0
	rho   = 28.0
	beta  = 8.0 / 3.0

	// DefaultWarmUp is the iteration count engines use in prepare.
	DefaultWarmUp = 2000

	// x stays within about ±20 on the attractor.
	xScale = 1.0 / 20.0

	// Forward Euler is stable on the attractor for dt below ~0.02.
	maxStep = 0.01
)

// Lorenz integrates the Lorenz system with forward Euler.
type Lorenz struct {
	x, y, z float64
	x0      float64
	dt      float64
}

// NewLorenz returns a generator whose initial x is offset by seedOffset so
// channels follow different trajectories.
func NewLorenz(seedOffset float64) *Lorenz {
	l := &Lorenz{x0: 0.1 + seedOffset, dt: 0.005}
	l.Reset()

	return l
}

// SetRate sets the integration step per Step call, in [1e-5, 0.01].
func (l *Lorenz) SetRate(dt float64) {
	l.dt = core.Clamp(dt, 1e-5, maxStep)
}

// SetRateHz maps an approximate orbit frequency to the integration step at
// the given call rate (calls per second).
func (l *Lorenz) SetRateHz(hz, callRate float64) {
	if callRate <= 0 {
		return
	}

	// One lobe orbit takes roughly 0.75 time units.
	l.SetRate(0.75 * hz / callRate)
}

// Reset returns to the initial condition.
func (l *Lorenz) Reset() {
	l.x, l.y, l.z = l.x0, 0, 0
}

// WarmUp advances n steps at the nominal step, discarding output.
func (l *Lorenz) WarmUp(n int) {
	dt := l.dt
	l.dt = maxStep

	for range n {
		l.Step()
	}

	l.dt = dt
}

// Step advances one step and returns x normalized to roughly [-1, 1].
func (l *Lorenz) Step() float64 {
	dx := sigma * (l.y - l.x)
	dy := l.x*(rho-l.z) - l.y
	dz := l.x*l.y - beta*l.z

	l.x += dx * l.dt
	l.y += dy * l.dt
	l.z += dz * l.dt

	if !core.IsFinite(l.x) || !core.IsFinite(l.y) || !core.IsFinite(l.z) {
		l.Reset()
	}

	return core.Clamp(l.x*xScale, -1, 1)
}

// Value returns the current normalized x without advancing.
func (l *Lorenz) Value() float64 {
	return core.Clamp(l.x*xScale, -1, 1)
}
