// Package rng provides the single seeded pseudo-random generator shared by
// every engine. It never allocates, so it is safe on the audio path, and
// Seed makes renders reproducible.
package rng

import "github.com/meko-christian/algo-approx"

const defaultSeed uint64 = 0x9E3779B97F4A7C15

// Rand is an xorshift64* generator.
type Rand struct {
	state uint64
	seed  uint64
}

// New returns a generator seeded with seed.
func New(seed uint64) *Rand {
	r := &Rand{}
	r.Seed(seed)

	return r
}

// Seed restarts the sequence. Seed 0 is replaced with a fixed non-zero value.
func (r *Rand) Seed(seed uint64) {
	if seed == 0 {
		seed = defaultSeed
	}

	r.seed = seed
	r.state = seed
}

// Reseed restarts the sequence from the last seed.
func (r *Rand) Reseed() {
	r.state = r.seed
}

// Uint64 returns the next raw value.
func (r *Rand) Uint64() uint64 {
	x := r.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	r.state = x

	return x * 0x2545F4914F6CDD1D
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Bipolar returns a value in [-1, 1).
func (r *Rand) Bipolar() float64 {
	return 2*r.Float64() - 1
}

// Range returns a value in [lo, hi).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// Intn returns a value in [0, n). n <= 0 yields 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}

	return int(r.Uint64() % uint64(n))
}

// Gaussian returns an approximately standard-normal value (Irwin-Hall sum of
// four uniforms, rescaled). Its support is bounded to about ±3.46.
func (r *Rand) Gaussian() float64 {
	s := r.Float64() + r.Float64() + r.Float64() + r.Float64()
	// mean 2, variance 4/12
	return (s - 2) * 1.7320508075688772
}

// OctaveScatter returns a playback ratio 2^(amount·g) for a Gaussian g,
// clamped to [lo, hi].
func (r *Rand) OctaveScatter(amount, lo, hi float64) float64 {
	const ln2 = 0.6931471805599453

	ratio := 1.0
	if amount > 0 {
		ratio = approx.FastExp(amount * r.Gaussian() * ln2)
	}

	if ratio < lo {
		return lo
	}

	if ratio > hi {
		return hi
	}

	return ratio
}
