package feedback

import (
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/delay"
	"github.com/cwbudde/algo-fxcore/dsp/diffuse"
	"github.com/cwbudde/algo-fxcore/dsp/filter/onepole"
	"github.com/cwbudde/algo-fxcore/dsp/interp"
	"github.com/cwbudde/algo-fxcore/dsp/mix"
)

const (
	numLines       = 4
	lineSeconds    = 2.0
	inputStages    = 3
	channelSpread  = 0.013
	dcCutoffHz     = 10.0
	wetGain        = 0.5
	shimmerPerLine = 0.5
)

var (
	lineRatios = [numLines]float64{1, 1.27, 1.59, 1.91}
	lineRates  = [numLines]float64{1, 1.31, 1.73, 2.11}
)

// blockParams are the physical settings for one block.
type blockParams struct {
	delay     float64 // base delay in samples
	feedback  float64
	modDepth  float64 // samples
	modRate   float64 // Hz
	crossFeed float64
	shimmer   float64
	mix       float64
	freeze    bool
}

// channel is one channel's network: four modulated lines mixed by a
// Hadamard matrix, each with damping and a DC blocker in its loop, fed by a
// short allpass diffuser.
type channel struct {
	lines    [numLines]*delay.Modulated
	damp     [numLines]onepole.LowPass
	dc       [numLines]onepole.DCBlocker
	diffuser *diffuse.Diffuser
	shimmer  *shifter

	spread float64
	delays [numLines]float64

	in    float64
	mixed [numLines]float64
}

func newChannel(sampleRate float64, index int) (*channel, error) {
	c := &channel{spread: 1 + channelSpread*float64(index)}

	for k := range c.lines {
		line, err := delay.NewModulated(sampleRate, lineSeconds, delay.WithMode(interp.ModeHermite))
		if err != nil {
			return nil, err
		}

		line.SetPhase(float64(k)*math.Pi/2 + float64(index)*math.Pi/3)
		c.lines[k] = line
		c.dc[k].SetCutoff(dcCutoffHz, sampleRate)
	}

	d, err := diffuse.NewDiffuser(sampleRate, diffuse.DefaultStageMs[:inputStages], c.spread)
	if err != nil {
		return nil, err
	}

	c.diffuser = d

	if c.shimmer, err = newShifter(sampleRate); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *channel) configure(bp *blockParams, diffusion, dampHz, sampleRate float64) {
	for k := range c.delays {
		c.delays[k] = bp.delay * lineRatios[k] * c.spread
		c.damp[k].SetCutoff(dampHz, sampleRate)
	}

	c.diffuser.SetAmount(diffusion)
}

// read diffuses x, reads the lines and prepares the mixed feedback vector.
// It returns the wet output.
func (c *channel) read(x float64, bp *blockParams) float64 {
	c.in = c.diffuser.Process(x)

	var out [numLines]float64
	for k, line := range c.lines {
		line.UpdateModulation(bp.modRate*lineRates[k], bp.modDepth)
		out[k] = line.Read(c.delays[k])
	}

	wet := wetGain * (out[0] + out[1] + out[2] + out[3])

	mix.Apply4(&out)

	if !bp.freeze {
		for k := range out {
			out[k] = c.damp[k].Process(out[k])
		}
	}

	// |sum|/2 never exceeds the vector norm, so blending it back keeps the
	// loop gain at or below one.
	s := c.shimmer.process(0.5 * (out[0] + out[1] + out[2] + out[3]))
	if bp.shimmer > 0 {
		for k := range out {
			out[k] = (1-bp.shimmer)*out[k] + bp.shimmer*shimmerPerLine*s
		}
	}

	c.mixed = out

	return wet
}

// write closes the loop. other is the mixed vector of the opposite channel
// (or this channel's own when mono).
func (c *channel) write(other *[numLines]float64, bp *blockParams) {
	for k, line := range c.lines {
		fb := (1-bp.crossFeed)*c.mixed[k] + bp.crossFeed*other[k]
		v := math.Tanh(c.in + bp.feedback*fb)
		line.Write(c.dc[k].Process(v))
	}
}

func (c *channel) reset() {
	for k, line := range c.lines {
		line.Reset()
		c.damp[k].Reset()
		c.dc[k].Reset()
	}

	c.diffuser.Reset()
	c.shimmer.reset()
	c.in = 0
	c.mixed = [numLines]float64{}
}
