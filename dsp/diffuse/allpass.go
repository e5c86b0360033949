// Package diffuse provides the allpass diffusion cascade used to smear
// transients into a smooth, dense onset.
package diffuse

import (
	"fmt"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/denormal"
)

// MaxFeedback bounds |feedback|; unity or beyond would not decay.
const MaxFeedback = 0.95

// Allpass is a single Schroeder-style allpass section:
//
//	out = -in + delayed
//	buffer <- in + delayed*feedback
type Allpass struct {
	buffer   []float64
	index    int
	feedback float64
}

// SetDelay allocates a ring of n samples. Prepare-time only.
func (a *Allpass) SetDelay(n int) error {
	if n < 1 {
		return fmt.Errorf("allpass delay must be >= 1: %d", n)
	}

	a.buffer = make([]float64, n)
	a.index = 0

	return nil
}

// Delay returns the ring length in samples.
func (a *Allpass) Delay() int { return len(a.buffer) }

// SetFeedback sets the feedback clamped to [-MaxFeedback, MaxFeedback].
func (a *Allpass) SetFeedback(g float64) {
	a.feedback = core.Clamp(g, -MaxFeedback, MaxFeedback)
}

// Feedback returns the clamped feedback.
func (a *Allpass) Feedback() float64 { return a.feedback }

// Process runs one sample. A section without a buffer passes input through.
func (a *Allpass) Process(input float64) float64 {
	if len(a.buffer) == 0 {
		return input
	}

	delayed := a.buffer[a.index]
	a.buffer[a.index] = denormal.Flush(input + delayed*a.feedback)

	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}

	return -input + delayed
}

// Reset clears the ring.
func (a *Allpass) Reset() {
	clear(a.buffer)
	a.index = 0
}
