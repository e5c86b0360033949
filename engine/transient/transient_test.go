package transient

import (
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-fxcore/dsp/envelope"
	"github.com/cwbudde/algo-fxcore/dsp/safety"
	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/cwbudde/algo-fxcore/internal/testutil"
	"github.com/cwbudde/algo-fxcore/measure/level"
)

const (
	testRate  = 48000.0
	testBlock = 256
)

func newEngine(t *testing.T, params map[int]float64) *Engine {
	t.Helper()

	e := New()
	e.UpdateParameters(params)

	if err := e.Prepare(testRate, testBlock); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	return e
}

func render(e *Engine, input []float64) []float64 {
	out := make([]float64, 0, len(input))
	buf := engine.NewBuffer(2, testBlock)

	for off := 0; off+testBlock <= len(input); off += testBlock {
		copy(buf[0], input[off:off+testBlock])
		copy(buf[1], input[off:off+testBlock])
		e.Process(buf)
		out = append(out, buf[0]...)
	}

	return out
}

// drumLoop is four hits per second at 0.1 peak with a 20 ms decay.
func drumLoop() []float64 {
	return testutil.DrumHit(21, 0.1, 20, testRate, int(testRate)/4, 2*int(testRate)/testBlock*testBlock)
}

func TestParameterMetadata(t *testing.T) {
	e := New()

	want := []string{"Attack", "Sustain", "Attack Time", "Release Time", "Separation", "Detection Mode", "Output", "Mix"}
	if e.NumParameters() != len(want) {
		t.Fatalf("NumParameters() = %d", e.NumParameters())
	}

	for i, name := range want {
		if got := e.ParameterName(i); got != name {
			t.Fatalf("ParameterName(%d) = %q, want %q", i, got, name)
		}
	}
}

func TestLatencyIsLookahead(t *testing.T) {
	if New().LatencySamples() != 0 {
		t.Fatal("latency before Prepare should be 0")
	}

	e := newEngine(t, nil)
	if got := e.LatencySamples(); got != 72 {
		t.Fatalf("LatencySamples() = %d, want 72 at 48 kHz", got)
	}
}

func TestNeutralSettingsDelayInput(t *testing.T) {
	e := newEngine(t, map[int]float64{ParamMix: 1})

	input := testutil.DeterministicSine(220, testRate, 0.3, 40*testBlock)
	out := render(e, input)
	lat := e.LatencySamples()

	for i := lat; i < len(out); i++ {
		if math.Abs(out[i]-input[i-lat]) > 1e-3 {
			t.Fatalf("sample %d: %v, want delayed input %v", i, out[i], input[i-lat])
		}
	}
}

func TestDryPathDelayedWithMixZero(t *testing.T) {
	e := newEngine(t, map[int]float64{ParamMix: 0, ParamAttack: 1})

	input := testutil.DeterministicNoise(3, 0.5, 20*testBlock)
	out := render(e, input)
	lat := e.LatencySamples()

	testutil.RequireSliceNearlyEqual(t, out[lat:], input[:len(input)-lat], 1e-12)
}

func TestAbortedBlockKeepsDryDelay(t *testing.T) {
	e := New(engine.WithTimeBudget(time.Nanosecond))
	e.UpdateParameters(map[int]float64{ParamMix: 0, ParamAttack: 1})

	if err := e.Prepare(testRate, testBlock); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	input := testutil.DeterministicNoise(31, 0.5, 8*testBlock)
	out := render(e, input)

	if e.Stats().AbortedBlocks == 0 {
		t.Skip("no block exceeded a 1 ns budget")
	}

	lat := e.LatencySamples()
	testutil.RequireSliceNearlyEqual(t, out[lat:], input[:len(input)-lat], 1e-12)
}

func TestSilenceInSilenceOut(t *testing.T) {
	for _, params := range []map[int]float64{
		{ParamAttack: 1, ParamSustain: 1, ParamOutput: 1},
		{ParamAttack: 0, ParamSustain: 0, ParamDetectionMode: 0.9},
	} {
		e := newEngine(t, params)
		if p := level.Peak(render(e, make([]float64, 50*testBlock))); p != 0 {
			t.Fatalf("params %v: peak %v", params, p)
		}
	}
}

func TestAttackCalibration(t *testing.T) {
	input := drumLoop()

	for _, mode := range []float64{0, 0.3, 0.6, 0.9} {
		boost := level.RMS(render(newEngine(t, map[int]float64{ParamAttack: 1, ParamDetectionMode: mode}), input))
		cut := level.RMS(render(newEngine(t, map[int]float64{ParamAttack: 0, ParamDetectionMode: mode}), input))

		if ratio := level.Ratio(boost, cut); ratio < 3 {
			t.Fatalf("mode %v: boost/cut RMS ratio %v, want >= 3", envelope.ModeFromUnit(mode), ratio)
		}
	}
}

func TestSustainShapesTail(t *testing.T) {
	input := drumLoop()

	more := render(newEngine(t, map[int]float64{ParamSustain: 1}), input)
	less := render(newEngine(t, map[int]float64{ParamSustain: 0}), input)

	// Compare the tail of the first hit, well after the onset.
	from, to := int(0.06*testRate), int(0.2*testRate)
	if level.RMS(more[from:to]) <= level.RMS(less[from:to]) {
		t.Fatal("sustain boost did not raise the tail")
	}
}

func TestTransientAmountBounded(t *testing.T) {
	e := newEngine(t, map[int]float64{ParamAttack: 1})
	buf := engine.NewBuffer(1, testBlock)
	input := drumLoop()

	sawOnset := false
	for off := 0; off+testBlock <= len(input); off += testBlock {
		copy(buf[0], input[off:off+testBlock])
		e.Process(buf)

		a := e.channels[0].amount
		if a < 0 || a > 1 {
			t.Fatalf("transient amount %v", a)
		}

		if a > 0.5 {
			sawOnset = true
		}
	}

	if !sawOnset {
		t.Fatal("no onset detected")
	}
}

func TestFastDetectorRMSWindow(t *testing.T) {
	e := newEngine(t, nil)

	// 10 ms at 48 kHz is 480 samples, rounded down to a power of two.
	if got := e.channels[0].fast.RMSWindowSamples(); got != 256 {
		t.Fatalf("RMS window = %d samples, want 256", got)
	}
}

func TestModeSwitchAppliedAtBlockBoundary(t *testing.T) {
	e := newEngine(t, nil)
	render(e, make([]float64, testBlock))

	if e.DetectionMode() != envelope.ModePeak {
		t.Fatalf("mode = %v", e.DetectionMode())
	}

	e.UpdateParameters(map[int]float64{ParamDetectionMode: 0.6})
	render(e, make([]float64, 2*testBlock))

	if e.DetectionMode() != envelope.ModeHilbert {
		t.Fatalf("mode = %v, want hilbert", e.DetectionMode())
	}
}

func TestLimiterBoundsExtremeBoost(t *testing.T) {
	e := newEngine(t, map[int]float64{ParamAttack: 1, ParamSustain: 1, ParamOutput: 1})

	out := render(e, testutil.DrumHit(5, 0.9, 30, testRate, 12000, 24000))
	if p := level.Peak(out); p > safety.DefaultLimitCeiling+1e-9 {
		t.Fatalf("peak %v above limiter ceiling", p)
	}
}

func TestRecoversFromNonFiniteInput(t *testing.T) {
	input := testutil.DeterministicNoise(23, 0.5, 200*testBlock)
	poisoned := append([]float64(nil), input...)
	poisoned[2*testBlock+5] = math.NaN()

	params := map[int]float64{ParamAttack: 0.8, ParamMix: 1}

	clean := level.RMS(render(newEngine(t, params), input)[150*testBlock:])
	got := render(newEngine(t, params), poisoned)[150*testBlock:]
	testutil.RequireFinite(t, got)

	if rms := level.RMS(got); rms < 0.5*clean {
		t.Fatalf("tail RMS %v after non-finite input, clean %v", rms, clean)
	}
}
