// Package delay provides fixed-capacity circular delay lines with fractional
// reads and an LFO-modulated variant.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/denormal"
	"github.com/cwbudde/algo-fxcore/dsp/interp"
)

const (
	hermiteMinDelay  = 2
	hermiteTailGuard = 3
)

// Line is a circular delay line whose capacity is a power of two, so every
// index is wrapped with a mask.
type Line struct {
	buffer   []float64
	mask     int
	writePos int
	mode     interp.Mode
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the fractional read kernel. The default is linear.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) { d.mode = mode }
}

// New returns a delay line holding at least size samples.
func New(size int, opts ...Option) (*Line, error) {
	d := &Line{mode: interp.ModeLinear}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.Allocate(size); err != nil {
		return nil, err
	}

	return d, nil
}

// Allocate replaces the buffer with a zeroed one of at least size samples.
// Called from prepare; never on the audio path.
func (d *Line) Allocate(size int) error {
	if size <= 1 {
		return fmt.Errorf("delay size must be > 1: %d", size)
	}

	n := core.NextPowerOfTwo(size)
	d.buffer = make([]float64, n)
	d.mask = n - 1
	d.writePos = 0

	return nil
}

// AllocateSeconds allocates capacity for seconds of audio at sampleRate.
func (d *Line) AllocateSeconds(seconds, sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("delay %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}

	return d.Allocate(int(math.Ceil(seconds*sampleRate)) + 4)
}

// Len returns the internal buffer capacity.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the largest delay callers may request (capacity-1).
func (d *Line) MaxDelay() float64 {
	return float64(len(d.buffer) - 1)
}

// ClampDelay limits delay to [1, capacity-1].
func (d *Line) ClampDelay(delay float64) float64 {
	return core.Clamp(delay, 1, d.MaxDelay())
}

// WritePos returns the index the next Write stores to.
func (d *Line) WritePos() int {
	return d.writePos
}

// Write stores one sample and advances the write cursor.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = denormal.Flush(sample)
	d.writePos = (d.writePos + 1) & d.mask
}

// ReadInt reads an integer delay. Delay 1 is the most recent sample.
func (d *Line) ReadInt(delay int) float64 {
	return d.buffer[(d.writePos-delay)&d.mask]
}

// Read reads a fractional delay using the configured kernel. Callers clamp
// delay to [1, MaxDelay()]; the masked indexing keeps any input in bounds.
func (d *Line) Read(delay float64) float64 {
	if d.mode == interp.ModeHermite {
		return d.ReadHermite(delay)
	}

	return d.ReadLinear(delay)
}

// ReadLinear reads position writePos-delay, interpolating between the two
// neighbouring stored samples.
func (d *Line) ReadLinear(delay float64) float64 {
	p := int(math.Floor(delay))
	t := delay - float64(p)

	// Larger delay is older, so interpolate from p toward p+1.
	return interp.Linear2(t, d.ReadInt(p), d.ReadInt(p+1))
}

// ReadHermite reads a fractional delay with cubic Hermite interpolation.
// The four taps need a neighbour on each side, so delay is clamped to
// [2, Len()-3].
func (d *Line) ReadHermite(delay float64) float64 {
	delay = core.Clamp(delay, hermiteMinDelay, float64(len(d.buffer)-hermiteTailGuard))
	p := int(math.Floor(delay))
	t := delay - float64(p)

	return interp.Hermite4(t, d.ReadInt(p-1), d.ReadInt(p), d.ReadInt(p+1), d.ReadInt(p+2))
}

// ReadAt reads an absolute fractional buffer position with linear
// interpolation. Positions outside [0, Len()) wrap.
func (d *Line) ReadAt(pos float64) float64 {
	p := int(math.Floor(pos))
	t := pos - float64(p)

	return interp.Linear2(t, d.buffer[p&d.mask], d.buffer[(p+1)&d.mask])
}

// Reset clears line state without reallocating.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
