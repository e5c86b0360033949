package engine

import (
	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/denormal"
	"github.com/cwbudde/algo-fxcore/dsp/safety"
	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"
)

// BypassThreshold is the mix level below which an engine may skip its wet
// path.
const BypassThreshold = 1e-3

// BlockFunc processes one block of at most the prepared block size. It
// returns false when it left the block untouched, which skips the output
// scrub.
type BlockFunc func(block Buffer) bool

// Base carries the state every engine shares: parameters, configuration,
// the block driver and safety counters. Engines embed it.
type Base struct {
	name   string
	cfg    Config
	params *ParamBank
	stats  Stats
	budget *safety.Budget
	log    logrus.FieldLogger

	sampleRate float64
	maxBlock   int
	prepared   bool

	dry     [core.MaxChannels][]float64
	scratch []float64
	view    [core.MaxChannels][]float64
}

// NewBase builds the shared state for an engine called name.
func NewBase(name string, infos []ParamInfo, opts ...Option) *Base {
	denormal.Enable()

	cfg := ApplyOptions(opts...)

	return &Base{
		name:   name,
		cfg:    cfg,
		params: NewParamBank(infos),
		budget: safety.NewBudget(0),
		log:    cfg.Logger.WithField("engine", name),
	}
}

// Prepare validates the host configuration, sizes the shared scratch
// buffers, configures block-rate smoothing and snaps parameters.
func (b *Base) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := ValidatePrepare(sampleRate, maxBlockSize); err != nil {
		return err
	}

	b.sampleRate = sampleRate
	b.maxBlock = maxBlockSize

	for ch := range b.dry {
		b.dry[ch] = make([]float64, maxBlockSize)
	}

	b.scratch = make([]float64, maxBlockSize)
	b.params.Prepare(sampleRate / float64(maxBlockSize))

	b.budget = safety.NewBudget(b.cfg.budgetFor(sampleRate, maxBlockSize), safety.WithMaxIterations(maxBlockSize))
	b.prepared = true

	return nil
}

// Prepared reports whether Prepare succeeded.
func (b *Base) Prepared() bool { return b.prepared }

// Name returns the engine name.
func (b *Base) Name() string { return b.name }

// Config returns the construction settings.
func (b *Base) Config() Config { return b.cfg }

// Logger returns the engine's logger. Never call it from Process.
func (b *Base) Logger() logrus.FieldLogger { return b.log }

// SampleRate returns the prepared sample rate.
func (b *Base) SampleRate() float64 { return b.sampleRate }

// MaxBlockSize returns the prepared block size.
func (b *Base) MaxBlockSize() int { return b.maxBlock }

// Channels returns the number of supported channels.
func (b *Base) Channels() int { return b.cfg.Channels }

// Params returns the parameter bank.
func (b *Base) Params() *ParamBank { return b.params }

// Param returns the block value of id.
func (b *Base) Param(id int) float64 { return b.params.Value(id) }

// UpdateParameters implements Processor.
func (b *Base) UpdateParameters(values map[int]float64) { b.params.Update(values) }

// NumParameters implements Processor.
func (b *Base) NumParameters() int { return b.params.Len() }

// ParameterName implements Processor.
func (b *Base) ParameterName(index int) string { return b.params.Name(index) }

// Stats implements StatsReporter.
func (b *Base) Stats() StatsSnapshot { return b.stats.Snapshot() }

// Counters exposes the live counters to the embedding engine.
func (b *Base) Counters() *Stats { return &b.stats }

// ResetBase snaps parameters to their targets.
func (b *Base) ResetBase() {
	b.params.Snap()
}

// Run drives fn over buf in chunks of at most the prepared block size,
// bounded to the supported channel count. Non-finite input is zeroed before
// fn so it cannot latch into recursive state. Parameters advance once per
// chunk and the output is scrubbed after fn.
func (b *Base) Run(buf Buffer, fn BlockFunc) {
	if !b.prepared || len(buf) == 0 {
		return
	}

	channels := min(len(buf), b.cfg.Channels)
	frames := Buffer(buf[:channels]).Frames()

	for off := 0; off < frames; off += b.maxBlock {
		n := min(b.maxBlock, frames-off)

		block := Buffer(b.view[:channels])
		for ch := range block {
			block[ch] = buf[ch][off : off+n]
			if s := safety.ScrubNonFinite(block[ch]); s > 0 {
				b.stats.scrubbed.Add(uint64(s))
			}

			copy(b.dry[ch][:n], block[ch])
		}

		b.params.UpdateBlock()
		b.budget.Begin(n)

		if fn(block) {
			for ch := range block {
				if s := safety.ScrubBuffer(block[ch], safety.DefaultCeiling); s > 0 {
					b.stats.scrubbed.Add(uint64(s))
				}
			}
		}

		if b.budget.Aborted() {
			b.stats.abortedBlocks.Add(1)
		}

		b.stats.blocks.Add(1)
	}
}

// Continue reports whether frame i of the current block may be processed.
// Once it returns false the rest of the block must be left dry, delayed by
// the engine latency if it reports one.
func (b *Base) Continue(i int) bool { return b.budget.Continue(i) }

// Dry returns the unprocessed input of channel ch for the current block.
func (b *Base) Dry(ch, n int) []float64 { return b.dry[ch][:n] }

// MixDry blends wet with the block's dry input of channel ch:
// wet = dry·(1-mix) + wet·mix. Only len(wet) frames are touched.
func (b *Base) MixDry(ch int, wet []float64, mix float64) {
	if mix >= 1 {
		return
	}

	n := len(wet)
	vecmath.ScaleBlock(wet, wet, mix)
	vecmath.ScaleBlock(b.scratch[:n], b.dry[ch][:n], 1-mix)
	vecmath.AddBlockInPlace(wet, b.scratch[:n])
}

// LogPrepared writes the standard Prepare log line.
func (b *Base) LogPrepared(latency int, fields logrus.Fields) {
	entry := b.log.WithFields(logrus.Fields{
		"sample_rate": b.sampleRate,
		"block_size":  b.maxBlock,
		"channels":    b.cfg.Channels,
		"latency":     latency,
		"budget":      b.budget.Limit(),
	})

	entry.WithFields(fields).Info("engine prepared")
}
