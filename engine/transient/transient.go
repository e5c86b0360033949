// Package transient implements a transient shaper. A fast and a slow
// envelope follower measure how much of the signal is onset; the high band
// of a lookahead-delayed copy is scaled by the attack gain in proportion and
// the low band by the sustain gain in the remainder.
package transient

import (
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/envelope"
	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/sirupsen/logrus"
)

// Name identifies the engine in logs and registries.
const Name = "transient"

// Engine is the transient shaper.
type Engine struct {
	*engine.Base

	channels  [core.MaxChannels]*channel
	lookahead int
	bp        blockParams
	blockFn   engine.BlockFunc
}

// New creates an unprepared engine.
func New(opts ...engine.Option) *Engine {
	e := &Engine{Base: engine.NewBase(Name, paramInfos, opts...)}
	e.blockFn = e.processBlock

	return e
}

// Prepare implements engine.Processor.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := engine.ValidatePrepare(sampleRate, maxBlockSize); err != nil {
		return err
	}

	lookahead := max(int(math.Round(lookaheadMs*0.001*sampleRate)), 1)

	var channels [core.MaxChannels]*channel
	for ch := range e.Channels() {
		c, err := newChannel(sampleRate, lookahead)
		if err != nil {
			return err
		}

		channels[ch] = c
	}

	if err := e.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}

	e.channels = channels
	e.lookahead = lookahead
	e.LogPrepared(e.LatencySamples(), logrus.Fields{"lookahead_ms": lookaheadMs})

	return nil
}

// Process implements engine.Processor. The engine never bypasses: its
// output is delayed by LatencySamples at every mix setting.
func (e *Engine) Process(buf engine.Buffer) {
	e.Run(buf, e.blockFn)
}

// Reset implements engine.Processor.
func (e *Engine) Reset() {
	e.ResetBase()

	for _, c := range e.channels {
		if c != nil {
			c.reset()
		}
	}

	e.Logger().Debug("engine reset")
}

// LatencySamples implements engine.Processor. It is 0 before Prepare.
func (e *Engine) LatencySamples() int { return e.lookahead }

// DetectionMode returns the detector mode active in the last block.
func (e *Engine) DetectionMode() envelope.Mode {
	if e.channels[0] == nil {
		return envelope.ModePeak
	}

	return e.channels[0].fast.Mode()
}

func (e *Engine) processBlock(block engine.Buffer) bool {
	sr := e.SampleRate()
	bp := &e.bp

	bp.attackDB = shapeDB(e.Param(ParamAttack))
	bp.sustainDB = shapeDB(e.Param(ParamSustain))
	bp.output = dbToGain(outputDB(e.Param(ParamOutput)))
	bp.mix = e.Param(ParamMix)

	mode := envelope.ModeFromUnit(e.Param(ParamDetectionMode))
	attack := attackMs(e.Param(ParamAttackTime))
	release := releaseMs(e.Param(ParamReleaseTime))
	xover := crossoverHz(e.Param(ParamSeparation))

	channels := block.Channels()
	for ch := range channels {
		e.channels[ch].configure(mode, attack, release, xover, sr)
	}

	frames := block.Frames()
	i := 0
	for ; i < frames && e.Continue(i); i++ {
		for ch := range channels {
			block[ch][i] = e.channels[ch].process(block[ch][i], bp)
		}
	}

	// an aborted block still keeps the dry path on the lookahead timeline
	for ; i < frames; i++ {
		for ch := range channels {
			block[ch][i] = e.channels[ch].delayOnly(block[ch][i])
		}
	}

	return true
}
