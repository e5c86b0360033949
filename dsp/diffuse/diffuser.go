package diffuse

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
)

// DefaultStageMs are mutually prime-ish stage lengths in milliseconds.
var DefaultStageMs = []float64{4.771, 3.595, 2.734, 1.734}

// Diffuser is a cascade of allpass sections.
type Diffuser struct {
	stages []Allpass
	amount float64
}

// NewDiffuser builds a cascade with one section per entry of stageMs, each
// length scaled by spread (use slightly different spreads per channel to
// decorrelate them).
func NewDiffuser(sampleRate float64, stageMs []float64, spread float64) (*Diffuser, error) {
	d := &Diffuser{}
	if err := d.Prepare(sampleRate, stageMs, spread); err != nil {
		return nil, err
	}

	return d, nil
}

// Prepare (re)allocates every section for sampleRate.
func (d *Diffuser) Prepare(sampleRate float64, stageMs []float64, spread float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("diffuser %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}

	if len(stageMs) < 2 {
		return fmt.Errorf("diffuser needs at least 2 stages: %d", len(stageMs))
	}

	if spread <= 0 {
		spread = 1
	}

	d.stages = make([]Allpass, len(stageMs))
	for i, ms := range stageMs {
		n := max(int(math.Round(ms*0.001*sampleRate*spread)), 1)
		if err := d.stages[i].SetDelay(n); err != nil {
			return err
		}
	}

	d.SetAmount(d.amount)

	return nil
}

// SetAmount maps amount in [0, 1] to section feedback in [0, 0.75].
func (d *Diffuser) SetAmount(amount float64) {
	d.amount = core.ClampUnit(amount)
	g := 0.75 * d.amount

	for i := range d.stages {
		d.stages[i].SetFeedback(g)
	}
}

// Amount returns the diffusion amount.
func (d *Diffuser) Amount() float64 { return d.amount }

// Stages returns the number of sections.
func (d *Diffuser) Stages() int { return len(d.stages) }

// Process runs x through every section.
func (d *Diffuser) Process(x float64) float64 {
	for i := range d.stages {
		x = d.stages[i].Process(x)
	}

	return x
}

// Reset clears every section.
func (d *Diffuser) Reset() {
	for i := range d.stages {
		d.stages[i].Reset()
	}
}
