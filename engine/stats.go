package engine

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Stats counts safety events. The audio goroutine only increments; readers
// take a Snapshot.
type Stats struct {
	blocks         atomic.Uint64
	abortedBlocks  atomic.Uint64
	scrubbed       atomic.Uint64
	droppedGrains  atomic.Uint64
	recycledGrains atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Blocks          uint64
	AbortedBlocks   uint64
	ScrubbedSamples uint64
	DroppedGrains   uint64
	RecycledGrains  uint64
}

// Snapshot reads all counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Blocks:          s.blocks.Load(),
		AbortedBlocks:   s.abortedBlocks.Load(),
		ScrubbedSamples: s.scrubbed.Load(),
		DroppedGrains:   s.droppedGrains.Load(),
		RecycledGrains:  s.recycledGrains.Load(),
	}
}

// AddGrainEvents records grain pool backpressure.
func (s *Stats) AddGrainEvents(dropped, recycled uint64) {
	if dropped > 0 {
		s.droppedGrains.Add(dropped)
	}

	if recycled > 0 {
		s.recycledGrains.Add(recycled)
	}
}

// Fields formats the snapshot for structured logging.
func (s StatsSnapshot) Fields() logrus.Fields {
	return logrus.Fields{
		"blocks":          s.Blocks,
		"aborted_blocks":  s.AbortedBlocks,
		"scrubbed":        s.ScrubbedSamples,
		"dropped_grains":  s.DroppedGrains,
		"recycled_grains": s.RecycledGrains,
	}
}
