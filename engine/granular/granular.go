// Package granular implements a granular cloud: grains are scheduled with
// jittered, chaos-modulated intervals and read from a per-channel recording
// of the input with random position, pitch and pan.
package granular

import (
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/chaos"
	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/grain"
	"github.com/cwbudde/algo-fxcore/dsp/rng"
	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/sirupsen/logrus"
)

// Name identifies the engine in logs and registries.
const Name = "granular"

// blockParams are the physical settings for one block.
type blockParams struct {
	interval float64 // seconds between grain starts
	length   int     // samples
	position float64 // samples behind the write head
	spray    float64 // samples
	scatter  float64 // octaves
	spread   float64
	feedback float64
	gain     float64
	mix      float64
}

// Engine is the granular cloud processor.
type Engine struct {
	*engine.Base

	channels [core.MaxChannels]*channel
	env      *grain.EnvelopeTable
	rand     *rng.Rand
	lorenz   *chaos.Lorenz
	bp       blockParams
	blockFn  engine.BlockFunc
}

// New creates an unprepared engine.
func New(opts ...engine.Option) *Engine {
	e := &Engine{Base: engine.NewBase(Name, paramInfos, opts...)}
	e.rand = rng.New(e.Config().Seed)
	e.lorenz = chaos.NewLorenz(0)
	e.blockFn = e.processBlock

	return e
}

// Prepare implements engine.Processor.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := engine.ValidatePrepare(sampleRate, maxBlockSize); err != nil {
		return err
	}

	env, err := grain.NewHannTable(grain.DefaultEnvelopeSize)
	if err != nil {
		return err
	}

	var channels [core.MaxChannels]*channel
	for ch := range e.Channels() {
		c, err := newChannel(sampleRate, e)
		if err != nil {
			return err
		}

		channels[ch] = c
	}

	if err := e.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}

	e.env = env
	e.channels = channels
	e.lorenz.SetRateHz(chaosRateHz, sampleRate/float64(maxBlockSize))
	e.restart()

	e.LogPrepared(e.LatencySamples(), logrus.Fields{
		"record_capacity": channels[0].record.Len(),
		"pool_size":       grain.DefaultPoolSize,
		"max_active":      maxActiveGrains,
	})

	return nil
}

// Process implements engine.Processor.
func (e *Engine) Process(buf engine.Buffer) {
	e.Run(buf, e.blockFn)
}

// Reset implements engine.Processor. The generator is reseeded so a reset
// engine renders the same output again.
func (e *Engine) Reset() {
	e.ResetBase()

	for _, c := range e.channels {
		if c != nil {
			c.reset()
		}
	}

	e.restart()
	e.Logger().Debug("engine reset")
}

// LatencySamples implements engine.Processor.
func (e *Engine) LatencySamples() int { return 0 }

// ActiveGrains returns the number of active grains on channel ch.
func (e *Engine) ActiveGrains(ch int) int {
	if ch < 0 || ch >= len(e.channels) || e.channels[ch] == nil {
		return 0
	}

	return e.channels[ch].pool.Active()
}

func (e *Engine) restart() {
	e.rand.Reseed()
	e.lorenz.Reset()
	e.lorenz.WarmUp(chaos.DefaultWarmUp)
}

func (e *Engine) updateBlockParams() {
	sr := e.SampleRate()
	bp := &e.bp

	c := e.Param(ParamChaos) * e.lorenz.Step()

	rate := grainRate(e.Param(ParamDensity))
	bp.interval = math.Exp2(-c*chaosIntervalO) / rate

	lengthSec := grainMs(e.Param(ParamGrainSize)) * 0.001
	bp.length = int(lengthSec * sr)
	bp.position = math.Max(0, e.Param(ParamPosition)*maxPositionSec+c*chaosPosSec) * sr
	bp.spray = e.Param(ParamSpray) * maxSpraySec * sr
	bp.scatter = e.Param(ParamPitchScatter) * maxScatterOct
	bp.spread = e.Param(ParamStereoSpread)
	bp.feedback = feedbackAmount(e.Param(ParamFeedback))
	bp.mix = e.Param(ParamMix)

	// Normalize by the expected overlap so density does not change loudness.
	bp.gain = 1 / math.Sqrt(math.Max(1, rate*lengthSec))
}

// spawn starts a grain on channel ch according to the block parameters.
func (e *Engine) spawn(ch int, c *channel) {
	bp := &e.bp
	r := e.rand

	inc := r.OctaveScatter(bp.scatter, grain.MinPitch, grain.MaxPitch)
	length := float64(bp.length)

	// Keep the read cursor between the write head and the oldest sample for
	// the whole grain.
	capacity := float64(c.record.Len())
	if drift := math.Abs(inc - 1); length*drift > capacity/2 {
		length = capacity / 2 / drift
	}

	lo := length*math.Max(inc-1, 0) + 2
	hi := capacity - 2 - length*math.Max(1-inc, 0)
	offset := core.Clamp(bp.position+r.Float64()*bp.spray, lo, hi)

	centre := 0.0
	if e.Channels() > 1 {
		centre = bp.spread * 0.5 * float64(2*ch-1)
	}

	c.pool.Start(grain.Spawn{
		Position:  float64(c.record.WritePos()) - offset,
		Length:    int(length),
		Increment: inc,
		Amplitude: r.Range(minAmplitude, 1),
		Pan:       centre + bp.spread*0.5*r.Bipolar(),
	})
}

func (e *Engine) processBlock(block engine.Buffer) bool {
	channels := block.Channels()
	frames := block.Frames()
	e.updateBlockParams()

	bp := &e.bp
	bypass := bp.mix < engine.BypassThreshold

	processed := 0
	for i := 0; i < frames && e.Continue(i); i++ {
		var outL, outR float64

		for ch := range channels {
			c := e.channels[ch]
			c.record.Write(block[ch][i] + bp.feedback*math.Tanh(c.last))

			if c.sched.Tick(bp.interval) {
				e.spawn(ch, c)
			}

			l, r := c.pool.Next(c.record, e.env)
			outL += l
			outR += r
		}

		outL *= bp.gain
		outR *= bp.gain

		if channels == 1 {
			mono := (outL + outR) * math.Sqrt2 / 2
			e.channels[0].last = mono
			if !bypass {
				block[0][i] = mono
			}
		} else {
			e.channels[0].last = outL
			e.channels[1].last = outR
			if !bypass {
				block[0][i] = outL
				block[1][i] = outR
			}
		}

		processed++
	}

	for ch := range channels {
		e.Counters().AddGrainEvents(e.channels[ch].counterDelta())
	}

	if bypass {
		return false
	}

	for ch := range channels {
		e.MixDry(ch, block[ch][:processed], bp.mix)
	}

	return true
}
