package onepole

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fxcore/internal/testutil"
)

func TestLowPassPassesDC(t *testing.T) {
	var f LowPass
	f.SetCutoff(100, 48000)

	var y float64
	for range 48000 {
		y = f.Process(1)
	}

	if math.Abs(y-1) > 1e-9 {
		t.Fatalf("DC gain %v want 1", y)
	}
}

func TestHighPassBlocksDC(t *testing.T) {
	var f HighPass
	f.SetCutoff(100, 48000)

	var y float64
	for range 48000 {
		y = f.Process(1)
	}

	if math.Abs(y) > 1e-9 {
		t.Fatalf("DC leak %v", y)
	}
}

func TestCrossoverBandsSumToInput(t *testing.T) {
	var c Crossover
	c.SetCutoff(800, 48000)

	in := testutil.DeterministicNoise(9, 1, 4096)
	for i, x := range in {
		low, high := c.Split(x)
		if math.Abs(low+high-x) > 1e-15 {
			t.Fatalf("sample %d: %v + %v != %v", i, low, high, x)
		}
	}
}

func TestCrossoverSeparatesFrequencies(t *testing.T) {
	lowTone := testutil.DeterministicSine(50, 48000, 1, 48000)
	highTone := testutil.DeterministicSine(8000, 48000, 1, 48000)

	var c Crossover
	c.SetCutoff(800, 48000)

	var lowEnergyLowTone, highEnergyLowTone float64
	for _, x := range lowTone {
		l, h := c.Split(x)
		lowEnergyLowTone += l * l
		highEnergyLowTone += h * h
	}

	c.Reset()

	var lowEnergyHighTone, highEnergyHighTone float64
	for _, x := range highTone {
		l, h := c.Split(x)
		lowEnergyHighTone += l * l
		highEnergyHighTone += h * h
	}

	if lowEnergyLowTone < 10*highEnergyLowTone {
		t.Fatalf("50 Hz tone not routed low: low=%g high=%g", lowEnergyLowTone, highEnergyLowTone)
	}

	if highEnergyHighTone < 10*lowEnergyHighTone {
		t.Fatalf("8 kHz tone not routed high: low=%g high=%g", lowEnergyHighTone, highEnergyHighTone)
	}
}

func TestDCBlockerRemovesOffset(t *testing.T) {
	var d DCBlocker
	d.SetCutoff(10, 48000)

	var y float64
	for range 48000 * 2 {
		y = d.Process(0.5)
	}

	if math.Abs(y) > 1e-6 {
		t.Fatalf("residual DC %v", y)
	}
}

func TestFiltersFlushDenormalTails(t *testing.T) {
	var f LowPass
	f.SetCutoff(1000, 48000)
	f.Process(1)

	for range 200000 {
		f.Process(0)
	}

	if f.y != 0 {
		t.Fatalf("tail not flushed: %g", f.y)
	}
}
