// Package dither requantizes rendered audio to a fixed bit depth with dither
// noise and error-feedback noise shaping.
package dither

import "fmt"

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// None rounds without noise.
	None Type = iota
	// Rectangular adds uniform noise of one step peak to peak.
	Rectangular
	// Triangular adds TPDF noise of two steps peak to peak.
	Triangular

	typeCount
)

var typeNames = [typeCount]string{"none", "rectangular", "triangular"}

func (t Type) String() string {
	if t >= 0 && t < typeCount {
		return typeNames[t]
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a name as returned by String.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}

	return None, fmt.Errorf("dither: unknown type %q", name)
}

// Shaping presets: error-feedback FIR coefficients applied to past errors.
var (
	// Flat disables shaping.
	Flat []float64
	// FirstOrder pushes the error spectrum up by 6 dB/octave.
	FirstOrder = []float64{1}
	// SecondOrder pushes the error spectrum up by 12 dB/octave.
	SecondOrder = []float64{2, -1}
)
