package core

import "math"

const (
	defaultEpsilon = 1e-12

	// MinTimeConstantMs is the shortest smoothing/detector time accepted by
	// TimeConstantCoeff. Shorter (or non-positive) times are raised to it.
	MinTimeConstantMs = 1.0
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampUnit clamps value to [0, 1]. NaN maps to 0.
func ClampUnit(value float64) float64 {
	if !(value > 0) {
		return 0
	}

	if value > 1 {
		return 1
	}

	return value
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// TimeConstantCoeff returns the one-pole decay coefficient
// exp(-1 / (ms * 0.001 * sampleRate)) used by smoothers and followers.
//
// Times below MinTimeConstantMs are raised to it. A non-positive sample rate
// yields 0 (no smoothing).
func TimeConstantCoeff(ms, sampleRate float64) float64 {
	if sampleRate <= 0 || !IsFinite(sampleRate) {
		return 0
	}

	if !(ms >= MinTimeConstantMs) {
		ms = MinTimeConstantMs
	}

	return math.Exp(-1.0 / (ms * 0.001 * sampleRate))
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// Lerp blends a toward b by t in [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// NextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
