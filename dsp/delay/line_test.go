package delay

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-fxcore/dsp/interp"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	for _, size := range []int{0, 1, -1} {
		if _, err := New(size); err == nil {
			t.Fatalf("expected error for size=%d", size)
		}
	}
}

func TestNewRoundsToPowerOfTwo(t *testing.T) {
	d, err := New(1000)
	if err != nil {
		t.Fatal(err)
	}

	if d.Len() != 1024 {
		t.Fatalf("Len: got %d want 1024", d.Len())
	}

	if d.MaxDelay() != 1023 {
		t.Fatalf("MaxDelay: got %v want 1023", d.MaxDelay())
	}

	if d.mode != interp.ModeLinear {
		t.Fatalf("default mode: got %v want linear", d.mode)
	}
}

func TestAllocateSecondsRejectsBadRate(t *testing.T) {
	var d Line
	if err := d.AllocateSeconds(1, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	if err := d.AllocateSeconds(2, 48000); err != nil {
		t.Fatal(err)
	}

	if d.Len() < 96000 {
		t.Fatalf("Len %d too small for 2 s", d.Len())
	}
}

// --- integer Read/Write ---

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		d.Write(float64(i))
	}
	// delay=1 => most recently written (7)
	if got := d.ReadInt(1); got != 7 {
		t.Fatalf("got %v want 7", got)
	}
	// delay=3 => 3 samples back from write head
	if got := d.ReadInt(3); got != 5 {
		t.Fatalf("got %v want 5", got)
	}
}

func TestReadWraparound(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		d.Write(float64(i))
	}

	if got := d.ReadInt(1); got != 9 {
		t.Fatalf("got %v want 9", got)
	}

	if got := d.ReadInt(4); got != 6 {
		t.Fatalf("got %v want 6", got)
	}
}

func TestWriteFlushesDenormals(t *testing.T) {
	d, _ := New(4)
	d.Write(1e-35)

	if got := d.ReadInt(1); got != 0 {
		t.Fatalf("denormal stored as %g", got)
	}
}

// --- fractional reads ---

func TestReadLinearInterpolates(t *testing.T) {
	d, _ := New(16)
	for i := 0; i < 16; i++ {
		d.Write(float64(i))
	}
	// delay 1 -> 15, delay 2 -> 14, so 1.25 -> 14.75
	if got := d.Read(1.25); !approxEqual(got, 14.75, 1e-12) {
		t.Fatalf("got %v want 14.75", got)
	}
}

func TestReadHermiteOnRamp(t *testing.T) {
	d, _ := New(16, WithMode(interp.ModeHermite))
	for i := 0; i < 16; i++ {
		d.Write(float64(i))
	}

	if got := d.Read(3.5); !approxEqual(got, 12.5, 1e-12) {
		t.Fatalf("got %v want 12.5", got)
	}
}

func TestReadHermiteClampsToFullNeighbourhood(t *testing.T) {
	d, _ := New(16, WithMode(interp.ModeHermite))
	for i := 0; i < 16; i++ {
		d.Write(float64(i))
	}

	tests := []struct {
		delay float64
		want  float64
	}{
		{1, 14},
		{1.5, 14},
		{2, 14},
		{12.25, 3.75},
		{13, 3},
		{14.5, 3},
		{d.MaxDelay(), 3},
	}

	for _, tt := range tests {
		if got := d.Read(tt.delay); !approxEqual(got, tt.want, 1e-12) {
			t.Fatalf("Read(%v) = %v, want %v", tt.delay, got, tt.want)
		}
	}
}

// Randomized delays, including the boundary values 1 and capacity-1, must
// always return a value drawn from the buffer's own contents.
func TestReadStaysInsideBuffer(t *testing.T) {
	for _, mode := range []interp.Mode{interp.ModeLinear, interp.ModeHermite} {
		d, _ := New(256, WithMode(mode))

		lo, hi := math.Inf(1), math.Inf(-1)
		rng := rand.New(rand.NewSource(3))
		for range 300 {
			v := rng.Float64()*2 - 1
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			d.Write(v)
		}

		delays := []float64{1, d.MaxDelay()}
		for range 5000 {
			delays = append(delays, d.ClampDelay(rng.Float64()*400-50))
		}

		// Hermite can overshoot its neighbours; bound it by the cubic's worst case.
		slack := 0.0
		if mode == interp.ModeHermite {
			slack = 1.5 * (hi - lo)
		}

		for _, delay := range delays {
			if delay < 1 || delay > d.MaxDelay() {
				t.Fatalf("ClampDelay returned %v", delay)
			}

			got := d.Read(delay)
			if math.IsNaN(got) || got < lo-slack || got > hi+slack {
				t.Fatalf("%v read(%v) = %v outside [%v, %v]", mode, delay, got, lo, hi)
			}
		}
	}
}

func TestReset(t *testing.T) {
	d, _ := New(8)
	for i := 0; i < 5; i++ {
		d.Write(1)
	}

	d.Reset()

	if d.WritePos() != 0 {
		t.Fatalf("write pos %d after reset", d.WritePos())
	}

	for i := 1; i < d.Len(); i++ {
		if d.ReadInt(i) != 0 {
			t.Fatalf("delay %d not cleared", i)
		}
	}
}

func TestReadAtWrapsAndInterpolates(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := range 8 {
		d.Write(float64(i))
	}

	if got := d.ReadAt(2.5); got != 2.5 {
		t.Fatalf("ReadAt(2.5) = %v, want 2.5", got)
	}

	if got := d.ReadAt(7.5); got != 3.5 {
		t.Fatalf("ReadAt(7.5) = %v, want 3.5 (7 -> 0 wrap)", got)
	}

	if got := d.ReadAt(-1); got != 7 {
		t.Fatalf("ReadAt(-1) = %v, want 7", got)
	}
}
