// Package envelope provides the rectifier + asymmetric one-pole follower used
// by dynamics engines.
package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/denormal"
)

// Mode selects the rectification strategy.
type Mode int

const (
	// ModePeak uses the instantaneous magnitude.
	ModePeak Mode = iota
	// ModeRMS uses a running RMS over a power-of-two window.
	ModeRMS
	// ModeHilbert combines the signal with a 90° FIR approximation of itself,
	// giving a low-ripple envelope at low frequencies.
	ModeHilbert
	// ModeHybrid blends Peak and RMS.
	ModeHybrid

	numModes
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePeak:
		return "peak"
	case ModeRMS:
		return "rms"
	case ModeHilbert:
		return "hilbert"
	case ModeHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ModeFromUnit maps a normalized [0, 1] control to a Mode.
func ModeFromUnit(v float64) Mode {
	m := Mode(core.ClampUnit(v) * float64(numModes))
	if m >= numModes {
		m = numModes - 1
	}

	return m
}

const (
	defaultAttackMs    = 1.0
	defaultReleaseMs   = 100.0
	defaultRMSWindowMs = 5.0
	maxRMSWindowMs     = 50.0
	defaultHybridMix   = 0.5

	// Full re-summation of the RMS window after this many wraps bounds
	// accumulated rounding drift of the running sum.
	rmsResumWraps = 64

	hilbertHalf = 7
	hilbertLen  = 2*hilbertHalf + 1
	historyLen  = 16 // power of two >= hilbertLen
	historyMask = historyLen - 1
)

// hilbertTaps is the Blackman-windowed ideal 90° FIR, h[n] = 2/(πn) for odd n.
var hilbertTaps = func() [hilbertLen]float64 {
	var h [hilbertLen]float64
	for i := range h {
		n := i - hilbertHalf
		if n%2 == 0 {
			continue
		}

		w := 0.42 + 0.5*math.Cos(math.Pi*float64(n)/float64(hilbertHalf+1)) +
			0.08*math.Cos(2*math.Pi*float64(n)/float64(hilbertHalf+1))
		h[i] = 2 / (math.Pi * float64(n)) * w
	}

	return h
}()

// Detector tracks a non-negative envelope.
//
// Mode changes are latched by SetMode and take effect in UpdateBlockCache, so
// the rectifier never switches inside a block.
type Detector struct {
	sampleRate float64
	attackMs   float64
	releaseMs  float64

	attackCoeff  float64
	releaseCoeff float64

	mode       Mode
	pending    Mode
	hasPending bool
	rectify    func(*Detector, float64) float64

	envelope float64

	rms       []float64
	rmsMask   int
	rmsIdx    int
	rmsSum    float64
	rmsWraps  int
	rmsWindow float64
	hybridMix float64

	history [historyLen]float64
	histIdx int
}

// NewDetector creates a peak detector with 1 ms attack and 100 ms release.
func NewDetector(sampleRate float64) (*Detector, error) {
	d := &Detector{
		attackMs:  defaultAttackMs,
		releaseMs: defaultReleaseMs,
		rmsWindow: defaultRMSWindowMs,
		hybridMix: defaultHybridMix,
	}

	if err := d.Prepare(sampleRate); err != nil {
		return nil, err
	}

	return d, nil
}

// Prepare allocates the RMS ring for sampleRate, recomputes coefficients and
// clears state.
func (d *Detector) Prepare(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("envelope detector %w: %v", core.ErrInvalidSampleRate, sampleRate)
	}

	d.sampleRate = sampleRate
	capacity := core.NextPowerOfTwo(int(math.Ceil(maxRMSWindowMs * 0.001 * sampleRate)))
	d.rms = make([]float64, capacity)
	d.applyRMSWindow()
	d.updateCoefficients()
	d.rectify = rectifierFor(d.mode)
	d.Reset()

	return nil
}

// SetAttack sets the attack time in milliseconds (minimum 1 ms).
func (d *Detector) SetAttack(ms float64) {
	d.attackMs = ms
	d.attackCoeff = core.TimeConstantCoeff(ms, d.sampleRate)
}

// SetRelease sets the release time in milliseconds (minimum 1 ms).
func (d *Detector) SetRelease(ms float64) {
	d.releaseMs = ms
	d.releaseCoeff = core.TimeConstantCoeff(ms, d.sampleRate)
}

// SetRMSWindow sets the RMS window; the length is rounded down to a power of
// two within the prepared capacity. It clears the running sum.
func (d *Detector) SetRMSWindow(ms float64) {
	d.rmsWindow = core.Clamp(ms, 0.1, maxRMSWindowMs)
	d.applyRMSWindow()
	d.clearRMS()
}

// SetMode latches a mode change for the next UpdateBlockCache.
func (d *Detector) SetMode(m Mode) {
	if m < 0 || m >= numModes {
		m = ModePeak
	}

	d.pending = m
	d.hasPending = m != d.mode
}

// UpdateBlockCache applies a latched mode change. Call once per block before
// any Process call.
func (d *Detector) UpdateBlockCache() {
	if !d.hasPending {
		return
	}

	d.mode = d.pending
	d.hasPending = false
	d.rectify = rectifierFor(d.mode)
	d.clearRMS()
	d.clearHistory()
}

// Mode returns the active mode.
func (d *Detector) Mode() Mode { return d.mode }

// Envelope returns the follower output.
func (d *Detector) Envelope() float64 { return d.envelope }

// Attack returns the attack time in milliseconds.
func (d *Detector) Attack() float64 { return d.attackMs }

// Release returns the release time in milliseconds.
func (d *Detector) Release() float64 { return d.releaseMs }

// RMSWindowSamples returns the active RMS window length.
func (d *Detector) RMSWindowSamples() int { return d.rmsMask + 1 }

// Process rectifies x and advances the follower. Non-finite input is
// treated as silence so it never reaches the RMS sum or the Hilbert history.
func (d *Detector) Process(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}

	return d.Follow(d.rectify(d, x))
}

// Follow advances the asymmetric follower toward an already rectified level.
// A non-finite level is treated as silence.
func (d *Detector) Follow(level float64) float64 {
	if math.IsNaN(level) || math.IsInf(level, 0) {
		level = 0
	}

	coeff := d.releaseCoeff
	if level > d.envelope {
		coeff = d.attackCoeff
	}

	d.envelope = denormal.Flush(d.envelope + (level-d.envelope)*(1-coeff))

	return d.envelope
}

// Reset clears follower and auxiliary state. The active mode is kept.
func (d *Detector) Reset() {
	d.envelope = 0
	d.clearRMS()
	d.clearHistory()
}

func (d *Detector) updateCoefficients() {
	d.attackCoeff = core.TimeConstantCoeff(d.attackMs, d.sampleRate)
	d.releaseCoeff = core.TimeConstantCoeff(d.releaseMs, d.sampleRate)
}

func (d *Detector) applyRMSWindow() {
	if len(d.rms) == 0 {
		return
	}

	n := int(d.rmsWindow * 0.001 * d.sampleRate)
	p := 1
	for p*2 <= n && p*2 <= len(d.rms) {
		p *= 2
	}

	d.rmsMask = p - 1
}

func (d *Detector) clearRMS() {
	clear(d.rms)
	d.rmsIdx = 0
	d.rmsSum = 0
	d.rmsWraps = 0
}

func (d *Detector) clearHistory() {
	d.history = [historyLen]float64{}
	d.histIdx = 0
}

func rectifierFor(m Mode) func(*Detector, float64) float64 {
	switch m {
	case ModeRMS:
		return (*Detector).rectifyRMS
	case ModeHilbert:
		return (*Detector).rectifyHilbert
	case ModeHybrid:
		return (*Detector).rectifyHybrid
	default:
		return (*Detector).rectifyPeak
	}
}

func (d *Detector) rectifyPeak(x float64) float64 {
	return math.Abs(x)
}

func (d *Detector) rectifyRMS(x float64) float64 {
	sq := x * x
	d.rmsSum += sq - d.rms[d.rmsIdx]
	d.rms[d.rmsIdx] = sq

	d.rmsIdx = (d.rmsIdx + 1) & d.rmsMask
	if d.rmsIdx == 0 {
		d.rmsWraps++
		if d.rmsWraps >= rmsResumWraps {
			d.rmsWraps = 0

			var s float64
			for _, v := range d.rms[:d.rmsMask+1] {
				s += v
			}

			d.rmsSum = s
		}
	}

	if d.rmsSum < 0 {
		d.rmsSum = 0
	}

	return math.Sqrt(d.rmsSum / float64(d.rmsMask+1))
}

func (d *Detector) rectifyHilbert(x float64) float64 {
	d.history[d.histIdx] = x

	var quad float64
	for i, h := range &hilbertTaps {
		if h == 0 {
			continue
		}
		quad += h * d.history[(d.histIdx-i)&historyMask]
	}

	direct := d.history[(d.histIdx-hilbertHalf)&historyMask]
	d.histIdx = (d.histIdx + 1) & historyMask

	return math.Sqrt(direct*direct + quad*quad)
}

func (d *Detector) rectifyHybrid(x float64) float64 {
	peak := math.Abs(x)
	rms := d.rectifyRMS(x)

	return core.Lerp(peak, rms, d.hybridMix)
}
