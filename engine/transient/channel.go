package transient

import (
	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/delay"
	"github.com/cwbudde/algo-fxcore/dsp/envelope"
	"github.com/cwbudde/algo-fxcore/dsp/filter/onepole"
	"github.com/cwbudde/algo-fxcore/dsp/safety"
)

// blockParams are the physical settings for one block.
type blockParams struct {
	attackDB  float64
	sustainDB float64
	output    float64
	mix       float64
}

// channel detects transients on the live input and shapes a lookahead-
// delayed copy split into two complementary bands.
type channel struct {
	fast *envelope.Detector
	slow *envelope.Detector

	look      *delay.Line
	lookahead int
	xover     onepole.Crossover
	limiter   *safety.SoftKnee

	// last transient amount, for inspection
	amount float64
}

func newChannel(sampleRate float64, lookahead int) (*channel, error) {
	fast, err := envelope.NewDetector(sampleRate)
	if err != nil {
		return nil, err
	}

	fast.SetRMSWindow(rmsWindowMs)

	slow, err := envelope.NewDetector(sampleRate)
	if err != nil {
		return nil, err
	}

	look, err := delay.New(lookahead + 2)
	if err != nil {
		return nil, err
	}

	return &channel{
		fast:      fast,
		slow:      slow,
		look:      look,
		lookahead: lookahead,
		limiter:   safety.NewSoftKnee(safety.DefaultKnee, safety.DefaultLimitCeiling),
	}, nil
}

// configure applies the block's detector and crossover settings. Mode
// changes take effect here, never inside a block.
func (c *channel) configure(mode envelope.Mode, attack, release, xoverHz, sampleRate float64) {
	c.fast.SetAttack(attack)
	c.fast.SetRelease(release)
	c.slow.SetAttack(attack * slowAttackRatio)
	c.slow.SetRelease(release)

	c.fast.SetMode(mode)
	c.fast.UpdateBlockCache()

	c.xover.SetCutoff(xoverHz, sampleRate)
}

func (c *channel) process(x float64, bp *blockParams) float64 {
	// slow follows the fast envelope, not the input
	ef := c.fast.Process(x)
	es := c.slow.Follow(ef)

	t := core.Clamp((ef-es)/(ef+transientEpsilon)*transientStrength, 0, 1)
	c.amount = t

	d := c.look.ReadInt(c.lookahead)
	c.look.Write(x)

	low, high := c.xover.Split(d)
	wet := high*dbToGain(bp.attackDB*t) + low*dbToGain(bp.sustainDB*(1-t))
	wet = c.limiter.Process(wet * bp.output)

	return d + (wet-d)*bp.mix
}

// delayOnly passes x through the lookahead line without shaping.
func (c *channel) delayOnly(x float64) float64 {
	d := c.look.ReadInt(c.lookahead)
	c.look.Write(x)

	return d
}

func (c *channel) reset() {
	c.fast.Reset()
	c.slow.Reset()
	c.look.Reset()
	c.xover.Reset()
	c.amount = 0
}
