package granular

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fxcore/dsp/safety"
	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/cwbudde/algo-fxcore/internal/testutil"
	"github.com/cwbudde/algo-fxcore/measure/level"
)

const (
	testRate  = 48000.0
	testBlock = 512
)

func newEngine(t *testing.T, params map[int]float64, opts ...engine.Option) *Engine {
	t.Helper()

	e := New(opts...)
	e.UpdateParameters(params)

	if err := e.Prepare(testRate, testBlock); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	return e
}

// render processes input in blocks and returns channel 0 of the output.
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

func TestParameterMetadata(t *testing.T) {
	e := New()

	want := []string{"Density", "Grain Size", "Position", "Pitch Scatter", "Spray", "Stereo Spread", "Chaos", "Feedback", "Mix"}
	if e.NumParameters() != len(want) {
		t.Fatalf("NumParameters() = %d", e.NumParameters())
	}

	for i, name := range want {
		if got := e.ParameterName(i); got != name {
			t.Fatalf("ParameterName(%d) = %q, want %q", i, got, name)
		}
	}
}

func TestSilenceInSilenceOut(t *testing.T) {
	for _, params := range []map[int]float64{
		{ParamMix: 1, ParamDensity: 1},
		{ParamMix: 1, ParamFeedback: 1, ParamChaos: 1, ParamPitchScatter: 1},
	} {
		e := newEngine(t, params)
		out := render(e, make([]float64, 100*testBlock))

		if p := level.Peak(out); p != 0 {
			t.Fatalf("params %v: peak %v from silence", params, p)
		}
	}
}

func TestMixZeroIsExactBypass(t *testing.T) {
	e := newEngine(t, map[int]float64{ParamMix: 0, ParamDensity: 0.8})

	input := testutil.DeterministicNoise(4, 0.5, 50*testBlock)
	out := render(e, input)

	testutil.RequireSliceNearlyEqual(t, out, input, 0)
}

func TestFullMixProducesStochasticCloud(t *testing.T) {
	e := newEngine(t, map[int]float64{
		ParamMix:       1,
		ParamDensity:   0.3,
		ParamGrainSize: 0.3,
		ParamPosition:  0,
		ParamSpray:     0.05,
	})

	input := testutil.DeterministicSine(440, testRate, 0.5, 200*testBlock)
	out := render(e, input)
	testutil.RequireFinite(t, out)

	rms := level.BlockRMS(out, testBlock)[10:]
	mean, std := level.MeanStd(rms)

	if mean <= 0 {
		t.Fatal("granular output is silent")
	}

	if std <= 0.05*mean {
		t.Fatalf("block RMS too steady: mean %v std %v", mean, std)
	}
}

func TestRecordingContinuesDuringBypass(t *testing.T) {
	e := newEngine(t, map[int]float64{ParamMix: 0, ParamPosition: 0, ParamSpray: 0, ParamDensity: 1})

	render(e, testutil.DeterministicNoise(6, 0.5, 20*testBlock))

	c := e.channels[0]
	var stored float64
	for i := 1; i <= testBlock; i++ {
		stored += c.record.ReadInt(i) * c.record.ReadInt(i)
	}

	if stored == 0 {
		t.Fatal("recording buffer empty after bypassed blocks")
	}
}

func TestActiveGrainsNeverExceedCap(t *testing.T) {
	e := newEngine(t, map[int]float64{
		ParamMix:       1,
		ParamDensity:   1,
		ParamGrainSize: 1,
		ParamChaos:     1,
	})

	buf := engine.NewBuffer(2, testBlock)
	noise := testutil.DeterministicNoise(8, 0.3, testBlock)

	for range 300 {
		copy(buf[0], noise)
		copy(buf[1], noise)
		e.Process(buf)

		for ch := range 2 {
			if n := e.ActiveGrains(ch); n > maxActiveGrains {
				t.Fatalf("channel %d: %d active grains", ch, n)
			}
		}
	}

	stats := e.Stats()
	if stats.DroppedGrains+stats.RecycledGrains == 0 {
		t.Fatalf("no backpressure recorded: %+v", stats)
	}
}

func TestResetIsReproducible(t *testing.T) {
	params := map[int]float64{ParamMix: 1, ParamDensity: 0.6, ParamPitchScatter: 0.5, ParamChaos: 0.5}
	input := testutil.DeterministicNoise(11, 0.5, 40*testBlock)

	e := newEngine(t, params, engine.WithSeed(99))
	first := render(e, input)

	e.Reset()
	second := render(e, input)

	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}

func TestFeedbackStaysBounded(t *testing.T) {
	e := newEngine(t, map[int]float64{ParamMix: 1, ParamFeedback: 1, ParamDensity: 1, ParamGrainSize: 0.8})

	out := render(e, testutil.DeterministicNoise(12, 0.8, 400*testBlock))
	testutil.RequireBounded(t, out, safety.DefaultCeiling)
}

func TestMonoBuffer(t *testing.T) {
	e := newEngine(t, map[int]float64{ParamMix: 1, ParamPosition: 0})

	buf := engine.Buffer{testutil.DeterministicSine(300, testRate, 0.5, testBlock)}
	for range 20 {
		e.Process(buf)
	}

	testutil.RequireFinite(t, buf[0])
}

func TestRecoversFromNonFiniteInput(t *testing.T) {
	input := testutil.DeterministicNoise(29, 0.5, 200*testBlock)
	poisoned := append([]float64(nil), input...)
	poisoned[4*testBlock+1] = math.NaN()

	params := map[int]float64{ParamMix: 1, ParamFeedback: 0.6, ParamDensity: 0.8}

	clean := level.RMS(render(newEngine(t, params), input)[150*testBlock:])
	got := render(newEngine(t, params), poisoned)[150*testBlock:]
	testutil.RequireFinite(t, got)

	if rms := level.RMS(got); rms < 0.5*clean {
		t.Fatalf("tail RMS %v after non-finite input, clean %v", rms, clean)
	}
}
