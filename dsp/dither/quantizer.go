package dither

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/rng"
)

const (
	minBits = 2
	maxBits = 24
)

type config struct {
	typ     Type
	seed    uint64
	shaping []float64
}

// Option configures a Quantizer.
type Option func(*config) error

// WithType sets the dither distribution. The default is Triangular.
func WithType(t Type) Option {
	return func(c *config) error {
		if t < 0 || t >= typeCount {
			return fmt.Errorf("dither: invalid type %d", int(t))
		}

		c.typ = t

		return nil
	}
}

// WithSeed seeds the noise generator.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed = seed
		return nil
	}
}

// WithShaping sets the error-feedback coefficients, e.g. FirstOrder.
func WithShaping(coeffs []float64) Option {
	return func(c *config) error {
		for _, v := range coeffs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("dither: shaping coefficient must be finite: %v", v)
			}
		}

		c.shaping = append([]float64(nil), coeffs...)

		return nil
	}
}

// Quantizer maps samples in [-1, 1] onto the grid of a signed integer format
// scaled by 2^(bits-1)-1. It keeps error history and is not safe for
// concurrent use; use one per channel.
type Quantizer struct {
	bits    int
	scale   float64
	typ     Type
	rng     *rng.Rand
	coeffs  []float64
	history []float64
	pos     int
}

// NewQuantizer creates a quantizer for bits of resolution.
func NewQuantizer(bits int, opts ...Option) (*Quantizer, error) {
	if bits < minBits || bits > maxBits {
		return nil, fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBits, maxBits, bits)
	}

	cfg := config{typ: Triangular, seed: 1}
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Quantizer{
		bits:    bits,
		scale:   math.Exp2(float64(bits-1)) - 1,
		typ:     cfg.typ,
		rng:     rng.New(cfg.seed),
		coeffs:  cfg.shaping,
		history: make([]float64, len(cfg.shaping)),
	}, nil
}

// Bits returns the target resolution.
func (q *Quantizer) Bits() int { return q.bits }

// Type returns the dither distribution.
func (q *Quantizer) Type() Type { return q.typ }

// ProcessInteger quantizes x to an integer code in [-scale, scale].
func (q *Quantizer) ProcessInteger(x float64) int {
	v := x * q.scale

	// subtract weighted past errors, newest first
	n := len(q.coeffs)
	for i, c := range q.coeffs {
		v -= c * q.history[(q.pos-i+n)%n]
	}

	code := math.Round(v + q.noise())
	code = math.Max(-q.scale, math.Min(q.scale, code))

	if n > 0 {
		q.pos = (q.pos + 1) % n
		q.history[q.pos] = code - v
	}

	return int(code)
}

// ProcessSample quantizes x and returns it on the normalized grid.
func (q *Quantizer) ProcessSample(x float64) float64 {
	return float64(q.ProcessInteger(x)) / q.scale
}

// ProcessInPlace quantizes buf.
func (q *Quantizer) ProcessInPlace(buf []float64) {
	for i, v := range buf {
		buf[i] = q.ProcessSample(v)
	}
}

// Reset clears the error history. The noise sequence continues.
func (q *Quantizer) Reset() {
	clear(q.history)
	q.pos = 0
}

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case Rectangular:
		return q.rng.Float64() - 0.5
	case Triangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
