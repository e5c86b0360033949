// Package onepole provides first-order filters used for damping, band
// splitting and DC removal inside feedback paths. Every recursive state is
// flushed of denormals on each sample.
package onepole

import (
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/denormal"
)

// LowPass is y += (x - y) * a, a = 1 - exp(-2π fc / fs).
type LowPass struct {
	a float64
	y float64
}

// SetCutoff sets the -3 dB frequency. The cutoff is clamped to (0, 0.49·fs).
func (f *LowPass) SetCutoff(hz, sampleRate float64) {
	if sampleRate <= 0 {
		f.a = 1
		return
	}

	hz = core.Clamp(hz, 1e-3, 0.49*sampleRate)
	f.a = 1 - math.Exp(-2*math.Pi*hz/sampleRate)
}

// SetCoefficient sets a in [0, 1] directly (1 = no filtering).
func (f *LowPass) SetCoefficient(a float64) {
	f.a = core.ClampUnit(a)
}

// Coefficient returns a.
func (f *LowPass) Coefficient() float64 { return f.a }

// Process filters one sample.
func (f *LowPass) Process(x float64) float64 {
	f.y = denormal.Flush(f.y + (x-f.y)*f.a)
	return f.y
}

// Reset clears state.
func (f *LowPass) Reset() { f.y = 0 }

// HighPass is the complement x - LowPass(x).
type HighPass struct {
	lp LowPass
}

// SetCutoff sets the crossover frequency.
func (f *HighPass) SetCutoff(hz, sampleRate float64) { f.lp.SetCutoff(hz, sampleRate) }

// Process filters one sample.
func (f *HighPass) Process(x float64) float64 { return x - f.lp.Process(x) }

// Reset clears state.
func (f *HighPass) Reset() { f.lp.Reset() }

// Crossover splits a signal into complementary bands: low + high == input
// exactly, so recombining unscaled bands is transparent.
type Crossover struct {
	lp LowPass
}

// SetCutoff sets the split frequency.
func (c *Crossover) SetCutoff(hz, sampleRate float64) { c.lp.SetCutoff(hz, sampleRate) }

// Split returns the low and high bands of x.
func (c *Crossover) Split(x float64) (low, high float64) {
	low = c.lp.Process(x)
	return low, x - low
}

// Reset clears state.
func (c *Crossover) Reset() { c.lp.Reset() }

// DCBlocker is y[n] = x[n] - x[n-1] + R·y[n-1].
type DCBlocker struct {
	r  float64
	x1 float64
	y1 float64
}

// SetCutoff sets the corner frequency; R is clamped to [0.9, 0.9999].
func (d *DCBlocker) SetCutoff(hz, sampleRate float64) {
	r := 0.995
	if sampleRate > 0 {
		r = 1 - 2*math.Pi*hz/sampleRate
	}

	d.r = core.Clamp(r, 0.9, 0.9999)
}

// Process filters one sample.
func (d *DCBlocker) Process(x float64) float64 {
	y := denormal.Flush(x - d.x1 + d.r*d.y1)
	d.x1 = x
	d.y1 = y

	return y
}

// Reset clears state.
func (d *DCBlocker) Reset() {
	d.x1 = 0
	d.y1 = 0
}
