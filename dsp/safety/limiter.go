package safety

import "math"

// Default soft-knee settings.
const (
	DefaultKnee         = 0.7
	DefaultLimitCeiling = 1.0
)

// SoftKnee is a memoryless limiter: linear below the knee, then a tanh
// curve that approaches the ceiling without reaching it.
type SoftKnee struct {
	knee    float64
	ceiling float64
}

// NewSoftKnee returns a limiter. knee is clamped to (0, ceiling).
func NewSoftKnee(knee, ceiling float64) *SoftKnee {
	s := &SoftKnee{}
	s.Set(knee, ceiling)

	return s
}

// Set changes knee and ceiling.
func (s *SoftKnee) Set(knee, ceiling float64) {
	if !(ceiling > 0) {
		ceiling = DefaultLimitCeiling
	}

	if !(knee > 0) || knee >= ceiling {
		knee = ceiling * DefaultKnee
	}

	s.knee = knee
	s.ceiling = ceiling
}

// Knee returns the start of the curved region.
func (s *SoftKnee) Knee() float64 { return s.knee }

// Ceiling returns the asymptotic output bound.
func (s *SoftKnee) Ceiling() float64 { return s.ceiling }

// Process limits one sample.
func (s *SoftKnee) Process(x float64) float64 {
	a := math.Abs(x)
	if a <= s.knee {
		return x
	}

	span := s.ceiling - s.knee
	y := s.knee + span*math.Tanh((a-s.knee)/span)

	return math.Copysign(y, x)
}

// ProcessInPlace limits buf.
func (s *SoftKnee) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = s.Process(x)
	}
}
