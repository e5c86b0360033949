// Package feedback implements a modulated feedback delay network with input
// diffusion, damping, cross-feed, an octave-up shimmer and freeze.
package feedback

import (
	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/sirupsen/logrus"
)

// Name identifies the engine in logs and registries.
const Name = "feedback"

// Engine is the feedback network processor.
type Engine struct {
	*engine.Base

	channels [core.MaxChannels]*channel
	wet      [core.MaxChannels]float64
	bp       blockParams
	blockFn  engine.BlockFunc
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

	var channels [core.MaxChannels]*channel
	for ch := range e.Channels() {
		c, err := newChannel(sampleRate, ch)
		if err != nil {
			return err
		}

		channels[ch] = c
	}

	if err := e.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}

	e.channels = channels
	e.LogPrepared(e.LatencySamples(), logrus.Fields{
		"lines":         numLines,
		"line_capacity": channels[0].lines[0].Len(),
	})

	return nil
}

// Process implements engine.Processor.
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

// LatencySamples implements engine.Processor.
func (e *Engine) LatencySamples() int { return 0 }

func (e *Engine) updateBlockParams(channels int) {
	sr := e.SampleRate()
	bp := &e.bp

	bp.delay = delayMs(e.Param(ParamDelayTime)) * 0.001 * sr
	bp.freeze = e.Param(ParamFreeze) >= freezeThreshold
	bp.feedback = feedbackGain(e.Param(ParamFeedback))
	if bp.freeze {
		bp.feedback = MaxFeedback
	}

	mod := e.Param(ParamModulation)
	bp.modDepth = mod * maxModDepthMs * 0.001 * sr
	bp.modRate = modRateHz(mod)
	bp.crossFeed = e.Param(ParamCrossFeed)
	bp.shimmer = e.Param(ParamShimmer)
	bp.mix = e.Param(ParamMix)

	diffusion := e.Param(ParamDiffusion)
	dampHz := dampingHz(e.Param(ParamDamping))

	for ch := range channels {
		e.channels[ch].configure(bp, diffusion, dampHz, sr)
	}
}

func (e *Engine) processBlock(block engine.Buffer) bool {
	channels := block.Channels()
	frames := block.Frames()
	e.updateBlockParams(channels)

	bp := &e.bp
	bypass := bp.mix < engine.BypassThreshold

	processed := 0
	for i := 0; i < frames && e.Continue(i); i++ {
		for ch := range channels {
			x := block[ch][i]
			if bp.freeze {
				x = 0
			}

			e.wet[ch] = e.channels[ch].read(x, bp)
		}

		for ch := range channels {
			other := ch
			if channels == 2 {
				other = 1 - ch
			}

			e.channels[ch].write(&e.channels[other].mixed, bp)
		}

		if !bypass {
			for ch := range channels {
				block[ch][i] = e.wet[ch]
			}
		}

		processed++
	}

	if bypass {
		return false
	}

	for ch := range channels {
		e.MixDry(ch, block[ch][:processed], bp.mix)
	}

	return true
}
