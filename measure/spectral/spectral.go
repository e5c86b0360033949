// Package spectral measures the spectra of rendered engine output.
package spectral

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

var (
	// ErrInvalidSize is returned for FFT sizes that are not a power of two >= 2.
	ErrInvalidSize = errors.New("spectral: fft size must be a power of two >= 2")
	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("spectral: sample rate must be > 0")
)

// Analyzer computes Hann-windowed one-sided magnitude spectra of a fixed size.
// It is not safe for concurrent use.
type Analyzer struct {
	size       int
	sampleRate float64
	plan       *algofft.Plan[complex128]
	window     []float64
	in         []complex128
	out        []complex128
	re         []float64
	im         []float64
}

// NewAnalyzer creates an analyzer for frames of size samples.
func NewAnalyzer(size int, sampleRate float64) (*Analyzer, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectral: fft plan: %w", err)
	}

	a := &Analyzer{
		size:       size,
		sampleRate: sampleRate,
		plan:       plan,
		window:     make([]float64, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		re:         make([]float64, size/2+1),
		im:         make([]float64, size/2+1),
	}

	// periodic Hann, normalized to unit coherent gain
	sum := 0.0
	for i := range a.window {
		a.window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
		sum += a.window[i]
	}

	vecmath.ScaleBlock(a.window, a.window, 1/sum)

	return a, nil
}

// Size returns the frame size.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of one-sided bins, Size/2+1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// BinFrequency returns the centre frequency of bin i in Hz.
func (a *Analyzer) BinFrequency(i int) float64 {
	return float64(i) * a.sampleRate / float64(a.size)
}

func (a *Analyzer) transform(frame []float64) error {
	for i := range a.in {
		v := 0.0
		if i < len(frame) {
			v = frame[i] * a.window[i]
		}

		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("spectral: forward fft: %w", err)
	}

	for i := range a.re {
		a.re[i] = real(a.out[i])
		a.im[i] = imag(a.out[i])
	}

	return nil
}

// Magnitude writes the one-sided magnitude spectrum of frame into dst and
// returns it. Short frames are zero-padded; dst is allocated when too short.
// A full-scale sine at a bin centre reads about 0.5.
func (a *Analyzer) Magnitude(dst, frame []float64) ([]float64, error) {
	if len(dst) < a.Bins() {
		dst = make([]float64, a.Bins())
	}

	dst = dst[:a.Bins()]
	if err := a.transform(frame); err != nil {
		return nil, err
	}

	vecmath.Magnitude(dst, a.re, a.im)

	return dst, nil
}

// Power writes the one-sided power spectrum of frame into dst.
func (a *Analyzer) Power(dst, frame []float64) ([]float64, error) {
	if len(dst) < a.Bins() {
		dst = make([]float64, a.Bins())
	}

	dst = dst[:a.Bins()]
	if err := a.transform(frame); err != nil {
		return nil, err
	}

	vecmath.Power(dst, a.re, a.im)

	return dst, nil
}

// Average returns the mean power spectrum over non-overlapping frames of sig.
// Signals shorter than one frame are zero-padded into a single frame.
func (a *Analyzer) Average(sig []float64) ([]float64, error) {
	acc := make([]float64, a.Bins())
	frame := make([]float64, a.Bins())
	frames := 0

	for start := 0; start == 0 || start+a.size <= len(sig); start += a.size {
		end := min(start+a.size, len(sig))

		var err error

		frame, err = a.Power(frame, sig[start:end])
		if err != nil {
			return nil, err
		}

		vecmath.AddBlockInPlace(acc, frame)
		frames++
	}

	vecmath.ScaleBlock(acc, acc, 1/float64(frames))

	return acc, nil
}

// PeakBin returns the index and value of the largest bin, skipping DC.
func PeakBin(spectrum []float64) (int, float64) {
	best, bestV := 0, 0.0

	for i := 1; i < len(spectrum); i++ {
		if spectrum[i] > bestV {
			best, bestV = i, spectrum[i]
		}
	}

	return best, bestV
}

// Centroid returns the weighted mean frequency of a one-sided spectrum of an
// fftSize-point transform. An all-zero spectrum yields 0.
func Centroid(spectrum []float64, sampleRate float64, fftSize int) float64 {
	if len(spectrum) < 2 || fftSize <= 0 {
		return 0
	}

	sum, weighted := 0.0, 0.0

	for i, v := range spectrum {
		sum += v
		weighted += v * float64(i) * sampleRate / float64(fftSize)
	}

	if sum == 0 {
		return 0
	}

	return weighted / sum
}

// Flatness returns the geometric over arithmetic mean of bins 1..n-1, in
// [0,1]. Any zero bin yields 0.
func Flatness(spectrum []float64) float64 {
	if len(spectrum) < 2 {
		return 0
	}

	n := float64(len(spectrum) - 1)
	sumLin, sumLog := 0.0, 0.0

	for _, v := range spectrum[1:] {
		if v <= 0 {
			return 0
		}

		sumLin += v
		sumLog += math.Log(v)
	}

	return math.Exp(sumLog/n) / (sumLin / n)
}

// BandEnergy sums the bins whose centre lies in [lo, hi) Hz.
func BandEnergy(spectrum []float64, sampleRate float64, fftSize int, lo, hi float64) float64 {
	sum := 0.0

	for i, v := range spectrum {
		f := float64(i) * sampleRate / float64(fftSize)
		if f >= lo && f < hi {
			sum += v
		}
	}

	return sum
}
