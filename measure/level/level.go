// Package level measures signal level over whole buffers and fixed-size
// blocks. It backs the engine scenario tests and the render reports.
package level

import (
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
)

// Summary holds level statistics of one signal.
type Summary struct {
	Length      int
	RMS         float64
	RMSdB       float64
	Peak        float64
	PeakdB      float64
	DC          float64
	CrestFactor float64 // peak / RMS
	NonFinite   int
}

// Measure computes a Summary in one pass. Non-finite samples are counted
// and skipped.
func Measure(signal []float64) Summary {
	s := Summary{Length: len(signal), RMSdB: math.Inf(-1), PeakdB: math.Inf(-1)}
	if len(signal) == 0 {
		return s
	}

	var sumSq, sum float64

	for _, x := range signal {
		if !core.IsFinite(x) {
			s.NonFinite++
			continue
		}

		sumSq += x * x
		sum += x
		s.Peak = math.Max(s.Peak, math.Abs(x))
	}

	n := float64(len(signal))
	s.RMS = math.Sqrt(sumSq / n)
	s.DC = sum / n

	if s.RMS > 0 {
		s.RMSdB = core.LinearToDB(s.RMS)
		s.CrestFactor = s.Peak / s.RMS
	}

	if s.Peak > 0 {
		s.PeakdB = core.LinearToDB(s.Peak)
	}

	return s
}

// RMS returns the root-mean-square of signal, 0 when empty.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the largest absolute sample.
func Peak(signal []float64) float64 {
	var p float64
	for _, x := range signal {
		p = math.Max(p, math.Abs(x))
	}

	return p
}

// BlockRMS returns the RMS of each complete blockSize chunk of signal.
func BlockRMS(signal []float64, blockSize int) []float64 {
	if blockSize <= 0 {
		return nil
	}

	out := make([]float64, len(signal)/blockSize)
	for i := range out {
		out[i] = RMS(signal[i*blockSize : (i+1)*blockSize])
	}

	return out
}

// MeanStd returns the mean and population standard deviation of values
// using Welford's update.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var m2 float64

	for i, x := range values {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}

	return mean, math.Sqrt(m2 / float64(len(values)))
}

// Ratio returns a/b, or +Inf when b is zero and a is not.
func Ratio(a, b float64) float64 {
	if b == 0 {
		if a == 0 {
			return 1
		}

		return math.Inf(1)
	}

	return a / b
}
