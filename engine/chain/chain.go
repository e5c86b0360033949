// Package chain runs engines in series as one engine.
//
// Parameter ids are namespaced by stage: id = stage*Stride + local id.
// NumParameters and ParameterName enumerate the flattened list in stage
// order; ParameterID converts such an index to its namespaced id.
package chain

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-fxcore/engine"
)

// Stride separates the parameter ids of consecutive stages.
const Stride = 1000

type named interface {
	Name() string
}

type stage struct {
	proc   engine.Processor
	prefix string
}

// Chain is a serial engine chain.
type Chain struct {
	stages []stage
	ids    []int
}

// New builds a chain of procs, processed in order.
func New(procs ...engine.Processor) (*Chain, error) {
	if len(procs) == 0 {
		return nil, errors.New("chain needs at least one engine")
	}

	c := &Chain{stages: make([]stage, len(procs))}

	for i, p := range procs {
		if p == nil {
			return nil, fmt.Errorf("chain stage %d: nil engine", i)
		}

		if n := p.NumParameters(); n > Stride {
			return nil, fmt.Errorf("chain stage %d: %d parameters exceed stride %d", i, n, Stride)
		}

		prefix := fmt.Sprintf("%d", i)
		if nm, ok := p.(named); ok {
			prefix = nm.Name()
		}

		c.stages[i] = stage{proc: p, prefix: prefix}

		for id := range p.NumParameters() {
			c.ids = append(c.ids, i*Stride+id)
		}
	}

	return c, nil
}

// Len returns the number of stages.
func (c *Chain) Len() int { return len(c.stages) }

// Stage returns engine i.
func (c *Chain) Stage(i int) engine.Processor { return c.stages[i].proc }

// Prepare implements engine.Processor.
func (c *Chain) Prepare(sampleRate float64, maxBlockSize int) error {
	for i, s := range c.stages {
		if err := s.proc.Prepare(sampleRate, maxBlockSize); err != nil {
			return fmt.Errorf("chain stage %d (%s): %w", i, s.prefix, err)
		}
	}

	return nil
}

// Process implements engine.Processor.
func (c *Chain) Process(buf engine.Buffer) {
	for _, s := range c.stages {
		s.proc.Process(buf)
	}
}

// Reset implements engine.Processor.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.proc.Reset()
	}
}

// UpdateParameters implements engine.Processor with namespaced ids.
func (c *Chain) UpdateParameters(values map[int]float64) {
	var perStage []map[int]float64

	for id, v := range values {
		i, local := id/Stride, id%Stride
		if id < 0 || i >= len(c.stages) {
			continue
		}

		if perStage == nil {
			perStage = make([]map[int]float64, len(c.stages))
		}

		if perStage[i] == nil {
			perStage[i] = make(map[int]float64)
		}

		perStage[i][local] = v
	}

	for i, m := range perStage {
		if m != nil {
			c.stages[i].proc.UpdateParameters(m)
		}
	}
}

// NumParameters implements engine.Processor.
func (c *Chain) NumParameters() int { return len(c.ids) }

// ParameterName implements engine.Processor. Names are prefixed with the
// stage's engine name, e.g. "feedback/Mix".
func (c *Chain) ParameterName(index int) string {
	if index < 0 || index >= len(c.ids) {
		return ""
	}

	id := c.ids[index]
	s := c.stages[id/Stride]

	return s.prefix + "/" + s.proc.ParameterName(id%Stride)
}

// ParameterID returns the namespaced id of flattened index, or -1.
func (c *Chain) ParameterID(index int) int {
	if index < 0 || index >= len(c.ids) {
		return -1
	}

	return c.ids[index]
}

// LatencySamples implements engine.Processor as the sum of stage latencies.
func (c *Chain) LatencySamples() int {
	total := 0
	for _, s := range c.stages {
		total += s.proc.LatencySamples()
	}

	return total
}

// Stats sums the counters of every stage that reports them.
func (c *Chain) Stats() engine.StatsSnapshot {
	var total engine.StatsSnapshot

	for _, s := range c.stages {
		r, ok := s.proc.(engine.StatsReporter)
		if !ok {
			continue
		}

		st := r.Stats()
		total.Blocks += st.Blocks
		total.AbortedBlocks += st.AbortedBlocks
		total.ScrubbedSamples += st.ScrubbedSamples
		total.DroppedGrains += st.DroppedGrains
		total.RecycledGrains += st.RecycledGrains
	}

	return total
}
