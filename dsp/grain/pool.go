package grain

import (
	"fmt"

	"github.com/cwbudde/algo-fxcore/dsp/delay"
	"github.com/cwbudde/algo-fxcore/dsp/denormal"
)

// DefaultPoolSize is the number of preallocated grain slots.
const DefaultPoolSize = 64

// Outcome reports what happened to a spawn request.
type Outcome int

const (
	// Spawned means a free slot was activated.
	Spawned Outcome = iota
	// Recycled means a nearly finished grain was restarted with new settings.
	Recycled
	// Dropped means the pool was full and no grain was far enough along.
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Spawned:
		return "spawned"
	case Recycled:
		return "recycled"
	case Dropped:
		return "dropped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Pool is a fixed arena of grains with a hard cap on concurrently active ones.
type Pool struct {
	grains    []Grain
	maxActive int
	active    int

	minLength int
	maxLength int

	spawned  uint64
	recycled uint64
	dropped  uint64
}

// NewPool allocates size grain slots. maxActive is clamped to [1, size].
func NewPool(size, maxActive int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("grain pool size must be > 0: %d", size)
	}

	p := &Pool{
		grains:    make([]Grain, size),
		minLength: 1,
		maxLength: 1 << 30,
	}
	p.SetMaxActive(maxActive)

	return p, nil
}

// SetMaxActive sets the concurrency cap, clamped to [1, Size()]. Grains above
// a lowered cap finish normally; no new grain starts until the count drops.
func (p *Pool) SetMaxActive(n int) {
	if n < 1 {
		n = 1
	}

	if n > len(p.grains) {
		n = len(p.grains)
	}

	p.maxActive = n
}

// SetLengthRange sets the grain length bounds in samples.
func (p *Pool) SetLengthRange(minSamples, maxSamples int) {
	if minSamples < 1 {
		minSamples = 1
	}

	if maxSamples < minSamples {
		maxSamples = minSamples
	}

	p.minLength = minSamples
	p.maxLength = maxSamples
}

// Size returns the number of slots.
func (p *Pool) Size() int { return len(p.grains) }

// MaxActive returns the concurrency cap.
func (p *Pool) MaxActive() int { return p.maxActive }

// Active returns the number of active grains.
func (p *Pool) Active() int { return p.active }

// Grain returns slot i for inspection.
func (p *Pool) Grain(i int) *Grain { return &p.grains[i] }

// Counters returns the cumulative spawn, recycle and drop counts.
func (p *Pool) Counters() (spawned, recycled, dropped uint64) {
	return p.spawned, p.recycled, p.dropped
}

// Start activates a grain for s. When the cap is reached the most complete
// grain is restarted if it is past RecycleThreshold; otherwise the request
// is dropped.
func (p *Pool) Start(s Spawn) Outcome {
	if p.active < p.maxActive {
		for i := range p.grains {
			if !p.grains[i].Active {
				p.grains[i].start(s, p.minLength, p.maxLength)
				p.active++
				p.spawned++

				return Spawned
			}
		}
	}

	best := -1
	bestCompletion := RecycleThreshold

	for i := range p.grains {
		g := &p.grains[i]
		if !g.Active {
			continue
		}

		if c := g.Completion(); c > bestCompletion {
			best = i
			bestCompletion = c
		}
	}

	if best < 0 {
		p.dropped++
		return Dropped
	}

	p.grains[best].start(s, p.minLength, p.maxLength)
	p.recycled++

	return Recycled
}

// Next renders one stereo sample from every active grain reading src and
// windowed by env, then advances each grain. Grain positions are absolute
// indexes into src and wrap at its capacity.
func (p *Pool) Next(src *delay.Line, env *EnvelopeTable) (left, right float64) {
	capacity := float64(src.Len())

	for i := range p.grains {
		g := &p.grains[i]
		if !g.Active {
			continue
		}

		s := src.ReadAt(g.Position) * env.At(g.Completion()) * g.Amplitude
		left += s * g.gainL
		right += s * g.gainR

		g.Position += g.Increment
		if g.Position >= capacity {
			g.Position -= capacity
		}

		g.Elapsed++
		if g.Elapsed >= g.Length {
			g.Active = false
			p.active--
		}
	}

	return denormal.Flush(left), denormal.Flush(right)
}

// Reset deactivates every grain. Counters are kept.
func (p *Pool) Reset() {
	for i := range p.grains {
		p.grains[i] = Grain{}
	}

	p.active = 0
}
