package diffuse

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fxcore/internal/testutil"
)

func TestAllpassDifferenceEquation(t *testing.T) {
	var a Allpass
	if err := a.SetDelay(3); err != nil {
		t.Fatal(err)
	}
	a.SetFeedback(0.5)

	in := []float64{1, 0, 0, 0, 0, 0, 0}
	// y[n] = -x[n] + w[n-3], w[n] = x[n] + 0.5 w[n-3]
	want := []float64{-1, 0, 0, 1, 0, 0, 0.5}

	for i, x := range in {
		if got := a.Process(x); math.Abs(got-want[i]) > 1e-15 {
			t.Fatalf("sample %d: got %v want %v", i, got, want[i])
		}
	}
}

func TestAllpassFeedbackClamped(t *testing.T) {
	var a Allpass
	a.SetFeedback(1.5)
	if a.Feedback() != MaxFeedback {
		t.Fatalf("feedback %v want %v", a.Feedback(), MaxFeedback)
	}

	a.SetFeedback(-3)
	if a.Feedback() != -MaxFeedback {
		t.Fatalf("feedback %v want %v", a.Feedback(), -MaxFeedback)
	}
}

func TestAllpassRejectsZeroDelay(t *testing.T) {
	var a Allpass
	if err := a.SetDelay(0); err == nil {
		t.Fatal("expected error")
	}

	if got := a.Process(0.3); got != 0.3 {
		t.Fatalf("unallocated section should pass through, got %v", got)
	}
}

func TestDiffuserValidation(t *testing.T) {
	if _, err := NewDiffuser(0, DefaultStageMs, 1); err == nil {
		t.Fatal("expected sample rate error")
	}

	if _, err := NewDiffuser(48000, []float64{3}, 1); err == nil {
		t.Fatal("expected stage count error")
	}
}

func TestDiffuserSpreadsImpulse(t *testing.T) {
	d, err := NewDiffuser(48000, DefaultStageMs, 1)
	if err != nil {
		t.Fatal(err)
	}
	d.SetAmount(1)

	out := make([]float64, 4800)
	for i, x := range testutil.Impulse(len(out), 0) {
		out[i] = d.Process(x)
	}

	testutil.RequireFinite(t, out)

	nonZero := 0
	for _, v := range out {
		if math.Abs(v) > 1e-6 {
			nonZero++
		}
	}

	if nonZero < 20 {
		t.Fatalf("impulse not diffused: %d non-zero samples", nonZero)
	}
}

func TestDiffuserSilenceInSilenceOut(t *testing.T) {
	d, _ := NewDiffuser(44100, DefaultStageMs, 1.1)
	d.SetAmount(0.8)

	for i := range 10000 {
		if v := d.Process(0); v != 0 {
			t.Fatalf("sample %d: %v", i, v)
		}
	}
}

func TestDiffuserResetClears(t *testing.T) {
	d, _ := NewDiffuser(48000, DefaultStageMs, 1)
	d.SetAmount(0.6)

	for range 100 {
		d.Process(1)
	}

	d.Reset()

	for range 1000 {
		if v := d.Process(0); v != 0 {
			t.Fatalf("state survived reset: %v", v)
		}
	}
}
