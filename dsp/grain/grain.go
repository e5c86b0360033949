// Package grain implements a fixed-size grain voice pool and the scheduler
// that decides when grains start.
//
// Grains live in a preallocated slice and are never removed; a free grain is
// one whose Active flag is false. Nothing in this package allocates after
// construction.
package grain

import "math"

// Limits applied to every spawn request.
const (
	MinPitch = 0.125
	MaxPitch = 8.0

	// RecycleThreshold is the completion a grain must exceed before it may be
	// cut short to make room for a new one.
	RecycleThreshold = 0.7
)

// Grain is one playback cursor into a shared recording buffer.
type Grain struct {
	Active    bool
	Position  float64
	Increment float64
	Length    int
	Elapsed   int
	Amplitude float64
	Pan       float64

	gainL float64
	gainR float64
}

// Completion returns elapsed/length in [0, 1].
func (g *Grain) Completion() float64 {
	if g.Length <= 0 {
		return 1
	}

	return float64(g.Elapsed) / float64(g.Length)
}

// Gains returns the equal-power left/right gains.
func (g *Grain) Gains() (left, right float64) {
	return g.gainL, g.gainR
}

// Spawn describes a new grain before clamping.
type Spawn struct {
	Position  float64
	Length    int
	Increment float64
	Amplitude float64
	Pan       float64
}

func (g *Grain) start(s Spawn, minLen, maxLen int) {
	length := s.Length
	if length < minLen {
		length = minLen
	}

	if length > maxLen {
		length = maxLen
	}

	inc := s.Increment
	if !(inc >= MinPitch) {
		inc = MinPitch
	}

	if inc > MaxPitch {
		inc = MaxPitch
	}

	g.Active = true
	g.Position = s.Position
	g.Increment = inc
	g.Length = length
	g.Elapsed = 0
	g.Amplitude = clamp(s.Amplitude, 0, 1)
	g.Pan = clamp(s.Pan, -1, 1)

	angle := (g.Pan + 1) * math.Pi / 4
	g.gainL = math.Cos(angle)
	g.gainR = math.Sin(angle)
}

func clamp(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
