package dither

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fxcore/internal/testutil"
)

func TestNewQuantizerValidation(t *testing.T) {
	if _, err := NewQuantizer(1); err == nil {
		t.Fatal("expected error for 1 bit")
	}

	if _, err := NewQuantizer(32); err == nil {
		t.Fatal("expected error for 32 bits")
	}

	if _, err := NewQuantizer(16, WithType(Type(9))); err == nil {
		t.Fatal("expected error for invalid type")
	}

	if _, err := NewQuantizer(16, WithShaping([]float64{math.NaN()})); err == nil {
		t.Fatal("expected error for NaN coefficient")
	}

	q, err := NewQuantizer(16, nil)
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	if q.Bits() != 16 || q.Type() != Triangular {
		t.Fatalf("defaults: bits %d type %v", q.Bits(), q.Type())
	}
}

func TestParseType(t *testing.T) {
	for i := range typeCount {
		got, err := ParseType(i.String())
		if err != nil || got != i {
			t.Fatalf("ParseType(%q) = %v, %v", i.String(), got, err)
		}
	}

	if _, err := ParseType("gaussian"); err == nil {
		t.Fatal("expected error")
	}

	if Type(7).String() != "Type(7)" {
		t.Fatalf("String() = %q", Type(7).String())
	}
}

func TestNoneRoundsToGrid(t *testing.T) {
	q, _ := NewQuantizer(8, WithType(None))

	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{1, 127},
		{-1, -127},
		{2, 127},
		{0.5, 64},
		{-0.5, -64},
	}

	for _, tt := range tests {
		if got := q.ProcessInteger(tt.in); got != tt.want {
			t.Errorf("ProcessInteger(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTriangularErrorIsUnbiased(t *testing.T) {
	q, _ := NewQuantizer(8, WithSeed(3))

	const x = 0.3 / 127 // a third of a step
	sum := 0.0

	for range 20000 {
		sum += q.ProcessSample(x)
	}

	if mean := sum / 20000; math.Abs(mean-x) > 0.05/127 {
		t.Fatalf("mean = %v, want %v", mean, x)
	}
}

func TestErrorStaysWithinSteps(t *testing.T) {
	sig := testutil.DeterministicSine(997, 48000, 0.8, 4800)

	for _, shaping := range [][]float64{Flat, FirstOrder, SecondOrder} {
		q, _ := NewQuantizer(12, WithShaping(shaping))
		step := 1 / (math.Exp2(11) - 1)

		for _, v := range sig {
			if d := math.Abs(q.ProcessSample(v) - v); d > 8*step {
				t.Fatalf("shaping %v: error %v exceeds 8 steps", shaping, d)
			}
		}
	}
}

func TestFirstOrderShapingMovesErrorUp(t *testing.T) {
	sig := testutil.DeterministicSine(440, 48000, 0.5, 1<<14)

	lowErr := func(coeffs []float64) float64 {
		q, _ := NewQuantizer(8, WithShaping(coeffs), WithSeed(5))

		// error through a four-point moving average
		var hist [4]float64

		sum := 0.0
		for i, v := range sig {
			hist[i%4] = q.ProcessSample(v) - v
			lp := 0.25 * (hist[0] + hist[1] + hist[2] + hist[3])
			sum += lp * lp
		}

		return sum
	}

	if flat, shaped := lowErr(Flat), lowErr(FirstOrder); shaped >= 0.8*flat {
		t.Fatalf("low-band error: shaped %v >= flat %v", shaped, flat)
	}
}

func TestResetClearsHistory(t *testing.T) {
	q, _ := NewQuantizer(8, WithType(None), WithShaping(FirstOrder))

	a := q.ProcessInteger(0.3)
	q.ProcessInteger(0.7)
	q.Reset()

	if b := q.ProcessInteger(0.3); b != a {
		t.Fatalf("after Reset: %d, want %d", b, a)
	}

	buf := []float64{0.25, -0.25}
	q.ProcessInPlace(buf)
	testutil.RequireFinite(t, buf)
}
