package grain

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fxcore/dsp/delay"
	"github.com/cwbudde/algo-fxcore/dsp/rng"
)

func TestHannTable(t *testing.T) {
	env, err := NewHannTable(DefaultEnvelopeSize)
	if err != nil {
		t.Fatalf("NewHannTable() error = %v", err)
	}

	if env.At(0) != 0 || math.Abs(env.At(1)) > 1e-12 {
		t.Fatalf("edges: %v %v", env.At(0), env.At(1))
	}

	if math.Abs(env.At(0.5)-1) > 1e-5 {
		t.Fatalf("centre = %v, want 1", env.At(0.5))
	}

	for _, p := range []float64{0.1, 0.25, 0.4} {
		if math.Abs(env.At(p)-env.At(1-p)) > 1e-9 {
			t.Fatalf("asymmetric at %v", p)
		}

		want := 0.5 - 0.5*math.Cos(2*math.Pi*p)
		if math.Abs(env.At(p)-want) > 1e-5 {
			t.Fatalf("At(%v) = %v, want %v", p, env.At(p), want)
		}
	}

	if env.At(-3) != 0 || env.At(math.NaN()) != 0 {
		t.Fatal("out-of-range phase not clamped")
	}

	if _, err := NewHannTable(1); err == nil {
		t.Fatal("expected error for size 1")
	}
}

func TestStartClampsSpawnParameters(t *testing.T) {
	p, err := NewPool(4, 4)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}

	p.SetLengthRange(100, 1000)

	if got := p.Start(Spawn{Length: 5, Increment: 100, Amplitude: 3, Pan: -7}); got != Spawned {
		t.Fatalf("outcome = %v", got)
	}

	g := p.Grain(0)
	if g.Length != 100 || g.Increment != MaxPitch || g.Amplitude != 1 || g.Pan != -1 {
		t.Fatalf("grain not clamped: %+v", *g)
	}

	l, r := g.Gains()
	if math.Abs(l-1) > 1e-12 || math.Abs(r) > 1e-12 {
		t.Fatalf("hard-left gains = %v, %v", l, r)
	}

	p.Start(Spawn{Length: 1 << 20, Increment: math.NaN()})
	g = p.Grain(1)

	if g.Length != 1000 || g.Increment != MinPitch {
		t.Fatalf("grain not clamped: %+v", *g)
	}
}

func TestEqualPowerPan(t *testing.T) {
	p, _ := NewPool(1, 1)

	for _, pan := range []float64{-1, -0.3, 0, 0.6, 1} {
		p.Reset()
		p.Start(Spawn{Length: 10, Increment: 1, Pan: pan})

		l, r := p.Grain(0).Gains()
		if math.Abs(l*l+r*r-1) > 1e-12 {
			t.Fatalf("pan %v: power %v", pan, l*l+r*r)
		}
	}
}

func TestRecycleOnlyPastThreshold(t *testing.T) {
	p, _ := NewPool(2, 2)
	src, _ := delay.New(64)
	env, _ := NewHannTable(16)

	p.Start(Spawn{Length: 10, Increment: 1})
	p.Start(Spawn{Length: 100, Increment: 1})

	for range 5 {
		p.Next(src, env)
	}

	if got := p.Start(Spawn{Length: 10, Increment: 1}); got != Dropped {
		t.Fatalf("outcome at 50%% = %v, want dropped", got)
	}

	for range 3 {
		p.Next(src, env)
	}

	if got := p.Start(Spawn{Length: 50, Increment: 1}); got != Recycled {
		t.Fatalf("outcome at 80%% = %v, want recycled", got)
	}

	if p.Grain(0).Length != 50 || p.Grain(0).Elapsed != 0 {
		t.Fatalf("most complete grain not restarted: %+v", *p.Grain(0))
	}

	spawned, recycled, dropped := p.Counters()
	if spawned != 2 || recycled != 1 || dropped != 1 {
		t.Fatalf("counters = %d %d %d", spawned, recycled, dropped)
	}
}

func TestGrainDeactivatesAtLength(t *testing.T) {
	p, _ := NewPool(4, 4)
	src, _ := delay.New(64)
	env, _ := NewHannTable(16)

	p.Start(Spawn{Length: 3, Increment: 1})

	for i := range 3 {
		if p.Active() != 1 {
			t.Fatalf("sample %d: active = %d", i, p.Active())
		}
		p.Next(src, env)
	}

	if p.Active() != 0 || p.Grain(0).Active {
		t.Fatal("grain still active after its length")
	}
}

func TestPlaybackReadsSource(t *testing.T) {
	p, _ := NewPool(1, 1)
	src, _ := delay.New(16)
	env, _ := NewHannTable(DefaultEnvelopeSize)

	for range 16 {
		src.Write(1)
	}

	p.Start(Spawn{Position: 3, Length: 101, Increment: 0.5, Amplitude: 1, Pan: 0})

	var peak float64
	for range 101 {
		l, r := p.Next(src, env)
		if math.Abs(l-r) > 1e-12 {
			t.Fatalf("centre pan not balanced: %v %v", l, r)
		}
		peak = math.Max(peak, l)
	}

	if math.Abs(peak-math.Sqrt2/2) > 1e-3 {
		t.Fatalf("peak = %v, want %v", peak, math.Sqrt2/2)
	}
}

func TestActiveNeverExceedsCap(t *testing.T) {
	const maxActive = 12

	p, _ := NewPool(DefaultPoolSize, maxActive)
	src, _ := delay.New(1 << 14)
	env, _ := NewHannTable(DefaultEnvelopeSize)
	r := rng.New(7)
	sched := NewScheduler(48000, r)

	for n := range 96000 {
		src.Write(r.Bipolar())

		if sched.Tick(0.0005) {
			p.Start(Spawn{
				Position:  float64(src.WritePos() - 4000),
				Length:    200 + r.Intn(3000),
				Increment: r.OctaveScatter(1, MinPitch, MaxPitch),
				Amplitude: r.Float64(),
				Pan:       r.Bipolar(),
			})
		}

		p.Next(src, env)

		count := 0
		for i := range p.Size() {
			if p.Grain(i).Active {
				count++
			}
		}

		if count > maxActive || count != p.Active() {
			t.Fatalf("sample %d: %d active (tracked %d), cap %d", n, count, p.Active(), maxActive)
		}
	}

	_, recycled, dropped := p.Counters()
	if recycled+dropped == 0 {
		t.Fatal("expected pool pressure in this run")
	}
}

func TestSchedulerAdvancesUnconditionally(t *testing.T) {
	sched := NewScheduler(1000, rng.New(3))

	fires := 0
	for range 10000 {
		if sched.Tick(0.01) {
			fires++

			next := sched.NextTime()
			if next < 0.01*MinJitter || next > 0.01*MaxJitter {
				t.Fatalf("next interval %v outside jitter bounds", next)
			}
		}
	}

	// 10 s at a mean interval of 10 ms.
	if fires < 800 || fires > 1200 {
		t.Fatalf("fires = %d, want about 1000", fires)
	}
}

func TestSchedulerFirstTickFires(t *testing.T) {
	sched := NewScheduler(48000, rng.New(1))
	if !sched.Tick(1) {
		t.Fatal("first tick should fire")
	}

	sched.Reset()
	if !sched.Tick(1) {
		t.Fatal("first tick after Reset should fire")
	}
}

func TestResetClearsPool(t *testing.T) {
	p, _ := NewPool(4, 4)
	p.Start(Spawn{Length: 10, Increment: 1})
	p.Start(Spawn{Length: 10, Increment: 1})
	p.Reset()

	if p.Active() != 0 {
		t.Fatalf("active = %d after reset", p.Active())
	}

	for i := range p.Size() {
		if p.Grain(i).Active {
			t.Fatalf("slot %d active after reset", i)
		}
	}
}
