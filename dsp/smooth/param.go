// Package smooth provides a lock-free, block-rate exponentially smoothed
// control value.
//
// The target may be written from any goroutine. The current value belongs to
// the audio goroutine and changes only inside UpdateBlock, so it is constant
// for the duration of one processing block.
package smooth

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-fxcore/dsp/core"
)

// DefaultSmoothingMs is the time constant used until SetSmoothingTime is called.
const DefaultSmoothingMs = 20.0

// Param is one smoothed control value.
type Param struct {
	target  atomic.Uint64
	current float64
	coeff   float64
}

// New returns a parameter with target and current set to value.
func New(value float64) *Param {
	p := &Param{}
	p.target.Store(math.Float64bits(value))
	p.current = value

	return p
}

// SetSmoothingTime configures the decay for a time constant in milliseconds.
// updateRate is how often UpdateBlock runs per second, normally
// sampleRate / blockSize. Times below core.MinTimeConstantMs are clamped.
func (p *Param) SetSmoothingTime(ms, updateRate float64) {
	p.coeff = core.TimeConstantCoeff(ms, updateRate)
}

// Coefficient returns the per-update decay coefficient.
func (p *Param) Coefficient() float64 { return p.coeff }

// SetTarget stores a new target. Safe from any goroutine.
func (p *Param) SetTarget(value float64) {
	p.target.Store(math.Float64bits(value))
}

// Target returns the most recently stored target.
func (p *Param) Target() float64 {
	return math.Float64frombits(p.target.Load())
}

// SetImmediate sets target and current together. Only for prepare/reset,
// never concurrently with UpdateBlock.
func (p *Param) SetImmediate(value float64) {
	p.target.Store(math.Float64bits(value))
	p.current = value
}

// Snap moves current onto the present target.
func (p *Param) Snap() {
	p.current = p.Target()
}

// UpdateBlock advances current toward target once. Audio goroutine only.
func (p *Param) UpdateBlock() {
	target := p.Target()
	p.current += (target - p.current) * (1 - p.coeff)

	if math.Abs(target-p.current) < 1e-12 {
		p.current = target
	}
}

// BlockValue returns the value for the current block.
func (p *Param) BlockValue() float64 { return p.current }
