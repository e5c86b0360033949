package granular

import (
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/delay"
	"github.com/cwbudde/algo-fxcore/dsp/grain"
)

// channel owns the recording buffer, grain pool and scheduler of one input
// channel.
type channel struct {
	record *delay.Line
	pool   *grain.Pool
	sched  *grain.Scheduler

	// previous output, fed back into the recording
	last float64

	recycled, dropped uint64
}

func newChannel(sampleRate float64, e *Engine) (*channel, error) {
	record, err := delay.New(int(math.Ceil(recordSeconds * sampleRate)))
	if err != nil {
		return nil, err
	}

	pool, err := grain.NewPool(grain.DefaultPoolSize, maxActiveGrains)
	if err != nil {
		return nil, err
	}

	pool.SetLengthRange(int(minGrainSec*sampleRate), int(maxGrainSec*sampleRate))

	return &channel{
		record: record,
		pool:   pool,
		sched:  grain.NewScheduler(sampleRate, e.rand),
	}, nil
}

// counterDelta returns pool events since the previous call.
func (c *channel) counterDelta() (dropped, recycled uint64) {
	_, r, d := c.pool.Counters()
	dropped, recycled = d-c.dropped, r-c.recycled
	c.dropped, c.recycled = d, r

	return dropped, recycled
}

func (c *channel) reset() {
	c.record.Reset()
	c.pool.Reset()
	c.sched.Reset()
	c.last = 0
}
