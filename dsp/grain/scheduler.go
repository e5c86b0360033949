package grain

import "github.com/cwbudde/algo-fxcore/dsp/rng"

// Jitter bounds for the interval between grain starts, as fractions of the
// base interval.
const (
	MinJitter = 0.2
	MaxJitter = 1.8
)

// Scheduler accumulates elapsed time and reports when the next grain is due.
type Scheduler struct {
	dt    float64
	timer float64
	next  float64
	rand  *rng.Rand
}

// NewScheduler returns a scheduler ticking at sampleRate and drawing jitter
// from r.
func NewScheduler(sampleRate float64, r *rng.Rand) *Scheduler {
	s := &Scheduler{rand: r}
	s.SetSampleRate(sampleRate)

	return s
}

// SetSampleRate sets the tick period.
func (s *Scheduler) SetSampleRate(sampleRate float64) {
	if sampleRate > 0 {
		s.dt = 1 / sampleRate
	}
}

// Tick advances the timer by one sample. When the timer reaches the next
// start time it returns true and schedules the following start baseInterval
// seconds (jittered) later. The schedule moves forward every time it fires,
// whether or not the caller manages to start a grain.
func (s *Scheduler) Tick(baseInterval float64) bool {
	s.timer += s.dt
	if s.timer < s.next {
		return false
	}

	if !(baseInterval > s.dt) {
		baseInterval = s.dt
	}

	s.timer -= s.next
	s.next = baseInterval * s.rand.Range(MinJitter, MaxJitter)

	return true
}

// Timer returns seconds elapsed since the last start.
func (s *Scheduler) Timer() float64 { return s.timer }

// NextTime returns the time of the next start relative to the last one.
func (s *Scheduler) NextTime() float64 { return s.next }

// Reset restarts timing; the first tick fires immediately.
func (s *Scheduler) Reset() {
	s.timer = 0
	s.next = 0
}
