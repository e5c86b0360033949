package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/sirupsen/logrus"
)

// Defaults for Config.
const (
	DefaultChannels = core.MaxChannels
	DefaultSeed     = 1

	// MinTimeBudget is the smallest automatic per-block wall-clock budget.
	MinTimeBudget = 20 * time.Millisecond
	// budgetBlocks scales the automatic budget to a multiple of the block
	// duration.
	budgetBlocks = 10
)

// Config holds construction-time engine settings. Sample rate and block size
// are Prepare arguments.
type Config struct {
	Channels   int
	Seed       uint64
	TimeBudget time.Duration
	Logger     logrus.FieldLogger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns stereo processing, seed 1, an automatic time budget
// and a silent logger.
func DefaultConfig() Config {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return Config{
		Channels: DefaultChannels,
		Seed:     DefaultSeed,
		Logger:   l,
	}
}

// WithChannels sets the number of supported channels, clamped to
// [1, core.MaxChannels].
func WithChannels(channels int) Option {
	return func(cfg *Config) {
		cfg.Channels = min(max(channels, 1), core.MaxChannels)
	}
}

// WithSeed sets the random seed used at Prepare and Reset.
func WithSeed(seed uint64) Option {
	return func(cfg *Config) { cfg.Seed = seed }
}

// WithTimeBudget sets the per-block wall-clock limit. Zero selects
// max(MinTimeBudget, 10 block durations); a negative value disables the
// time check.
func WithTimeBudget(d time.Duration) Option {
	return func(cfg *Config) { cfg.TimeBudget = d }
}

// WithLogger sets the logger used by Prepare and Reset.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// ApplyOptions applies opts over DefaultConfig.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// ValidatePrepare checks Prepare arguments.
func ValidatePrepare(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: %v", core.ErrInvalidSampleRate, sampleRate)
	}

	if maxBlockSize <= 0 {
		return fmt.Errorf("%w: %d", core.ErrInvalidBlockSize, maxBlockSize)
	}

	return nil
}

func (cfg Config) budgetFor(sampleRate float64, maxBlockSize int) time.Duration {
	switch {
	case cfg.TimeBudget < 0:
		return 0
	case cfg.TimeBudget > 0:
		return cfg.TimeBudget
	}

	block := time.Duration(float64(maxBlockSize) / sampleRate * float64(time.Second))

	return max(MinTimeBudget, budgetBlocks*block)
}
