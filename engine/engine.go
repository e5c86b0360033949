// Package engine defines the lifecycle contract shared by every effect
// engine and the infrastructure they build on: the parameter bank, block
// driver, dry/wet mixing, safety counters and configuration options.
//
// The audio goroutine calls Prepare, Process and Reset, never concurrently
// with each other. UpdateParameters may be called from any goroutine.
package engine

// Processor is one effect engine.
type Processor interface {
	// Prepare allocates all state for sampleRate and blocks of up to
	// maxBlockSize frames. It replaces earlier allocations and may be called
	// again when the host configuration changes.
	Prepare(sampleRate float64, maxBlockSize int) error
	// Process transforms buf in place. It does nothing before a successful
	// Prepare.
	Process(buf Buffer)
	// Reset clears delay lines, grains and filter memory without reallocating.
	Reset()
	// UpdateParameters sets normalized [0, 1] targets by parameter id.
	// Unknown ids are ignored.
	UpdateParameters(values map[int]float64)
	NumParameters() int
	// ParameterName returns "" for an unknown index.
	ParameterName(index int) string
	// LatencySamples reports the fixed algorithmic delay.
	LatencySamples() int
}

// StatsReporter is implemented by engines that count safety events.
type StatsReporter interface {
	Stats() StatsSnapshot
}

// Buffer holds one slice per channel (0 = left, 1 = right).
type Buffer [][]float64

// NewBuffer allocates channels x frames zeroed samples.
func NewBuffer(channels, frames int) Buffer {
	buf := make(Buffer, channels)
	for ch := range buf {
		buf[ch] = make([]float64, frames)
	}

	return buf
}

// Channels returns the number of channels.
func (b Buffer) Channels() int { return len(b) }

// Frames returns the shortest channel length, or 0 for an empty buffer.
func (b Buffer) Frames() int {
	if len(b) == 0 {
		return 0
	}

	n := len(b[0])
	for _, ch := range b[1:] {
		n = min(n, len(ch))
	}

	return n
}

// Deinterleave splits interleaved samples into dst. It returns the number of
// frames written.
func Deinterleave(dst Buffer, src []float64) int {
	channels := len(dst)
	if channels == 0 {
		return 0
	}

	frames := min(len(src)/channels, dst.Frames())
	for i := range frames {
		for ch := range channels {
			dst[ch][i] = src[i*channels+ch]
		}
	}

	return frames
}

// Interleave writes src into dst frame by frame. It returns the number of
// frames written.
func Interleave(dst []float64, src Buffer) int {
	channels := len(src)
	if channels == 0 {
		return 0
	}

	frames := min(len(dst)/channels, src.Frames())
	for i := range frames {
		for ch := range channels {
			dst[i*channels+ch] = src[ch][i]
		}
	}

	return frames
}
