package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// DrumHit generates a percussive noise burst: an instant onset followed by an
// exponential decay with time constant tauMs, repeated every periodSamples.
func DrumHit(seed int64, amplitude, tauMs, sampleRate float64, periodSamples, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	decay := math.Exp(-1 / (tauMs * 0.001 * sampleRate))

	env := 0.0
	for i := range out {
		if periodSamples > 0 && i%periodSamples == 0 {
			env = amplitude
		}
		out[i] = (rng.Float64()*2 - 1) * env
		env *= decay
	}
	return out
}
