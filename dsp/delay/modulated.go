package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/interp"
)

const twoPi = 2 * math.Pi

// Modulated is a Line whose read position is offset by a sine LFO.
type Modulated struct {
	Line

	sampleRate float64
	phase      float64
	initPhase  float64
	offset     float64
}

// NewModulated allocates maxSeconds of delay at sampleRate.
func NewModulated(sampleRate, maxSeconds float64, opts ...Option) (*Modulated, error) {
	m := &Modulated{}
	m.mode = interp.ModeLinear
	for _, opt := range opts {
		opt(&m.Line)
	}

	if err := m.Prepare(sampleRate, maxSeconds); err != nil {
		return nil, err
	}

	return m, nil
}

// Prepare (re)allocates the buffer for maxSeconds and resets state.
func (m *Modulated) Prepare(sampleRate, maxSeconds float64) error {
	if maxSeconds <= 0 || !core.IsFinite(maxSeconds) {
		return fmt.Errorf("modulated delay length must be > 0: %v", maxSeconds)
	}

	if err := m.AllocateSeconds(maxSeconds, sampleRate); err != nil {
		return err
	}

	m.sampleRate = sampleRate
	m.Reset()

	return nil
}

// SetPhase sets the LFO start phase in radians, applied now and on Reset.
// Channels use different phases to decorrelate.
func (m *Modulated) SetPhase(radians float64) {
	m.initPhase = math.Mod(radians, twoPi)
	m.phase = m.initPhase
}

// UpdateModulation advances the LFO by one sample and recomputes the offset
// as sin(phase)*depthSamples.
func (m *Modulated) UpdateModulation(rateHz, depthSamples float64) {
	m.phase += twoPi * rateHz / m.sampleRate
	if m.phase >= twoPi {
		m.phase -= twoPi
	}

	m.offset = math.Sin(m.phase) * depthSamples
}

// Offset returns the current modulation offset in samples.
func (m *Modulated) Offset() float64 { return m.offset }

// Read reads delay plus the modulation offset, clamped to [1, MaxDelay()].
func (m *Modulated) Read(delay float64) float64 {
	return m.Line.Read(m.ClampDelay(delay + m.offset))
}

// Reset clears the buffer and rewinds the LFO.
func (m *Modulated) Reset() {
	m.Line.Reset()
	m.phase = m.initPhase
	m.offset = 0
}
