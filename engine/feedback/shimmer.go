package feedback

import (
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/delay"
)

const (
	shimmerRatio     = 2.0
	shimmerWindowSec = 0.05
)

// shifter is a two-tap crossfading pitch shifter. Each tap sweeps its delay
// across one window; the taps are half a window apart and weighted by
// sin² and cos² of the sweep phase, so the weights always sum to one and a
// tap is silent when its delay jumps back.
type shifter struct {
	line   *delay.Line
	window float64
	step   float64
	phase  float64
}

func newShifter(sampleRate float64) (*shifter, error) {
	window := math.Round(shimmerWindowSec * sampleRate)

	line, err := delay.New(int(window) + 4)
	if err != nil {
		return nil, err
	}

	return &shifter{
		line:   line,
		window: window,
		step:   (shimmerRatio - 1) / window,
	}, nil
}

func (s *shifter) process(x float64) float64 {
	s.line.Write(x)

	s.phase += s.step
	if s.phase >= 1 {
		s.phase -= 1
	}

	pb := s.phase + 0.5
	if pb >= 1 {
		pb -= 1
	}

	a := s.line.ReadLinear(1 + (1-s.phase)*s.window)
	b := s.line.ReadLinear(1 + (1-pb)*s.window)

	wa := math.Sin(math.Pi * s.phase)
	wa *= wa

	return a*wa + b*(1-wa)
}

func (s *shifter) reset() {
	s.line.Reset()
	s.phase = 0
}
