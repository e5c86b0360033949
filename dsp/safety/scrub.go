package safety

import "math"

// DefaultCeiling is the absolute output bound applied by Scrub.
const DefaultCeiling = 1.5

// Scrub replaces a non-finite x with 0 and clamps it to ±ceiling. The second
// result reports whether x was changed.
func Scrub(x, ceiling float64) (float64, bool) {
	switch {
	case math.IsNaN(x) || math.IsInf(x, 0):
		return 0, true
	case x > ceiling:
		return ceiling, true
	case x < -ceiling:
		return -ceiling, true
	default:
		return x, false
	}
}

// ScrubBuffer scrubs buf in place and returns how many samples changed.
func ScrubBuffer(buf []float64, ceiling float64) int {
	n := 0

	for i, x := range buf {
		y, changed := Scrub(x, ceiling)
		if changed {
			buf[i] = y
			n++
		}
	}

	return n
}

// ScrubNonFinite replaces NaN and Inf in buf with 0 and returns how many
// samples changed. Finite values are never altered.
func ScrubNonFinite(buf []float64) int {
	n := 0

	for i, x := range buf {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			buf[i] = 0
			n++
		}
	}

	return n
}
