package main

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-fxcore/engine"
)

const bytesPerSample = 4 // float32 LE

// blockReader renders an engine block by block on demand and serves the
// interleaved float32 stream as an io.Reader for the audio device. The input
// loops forever.
type blockReader struct {
	proc   engine.Processor
	source [][]float64
	pos    int

	buf     engine.Buffer
	view    engine.Buffer
	pcm     []byte
	pending []byte
	frames  atomic.Uint64
}

func newBlockReader(proc engine.Processor, source [][]float64, blockSize int) *blockReader {
	numCh := len(source)

	return &blockReader{
		proc:   proc,
		source: source,
		buf:    engine.NewBuffer(numCh, blockSize),
		view:   make(engine.Buffer, numCh),
		pcm:    make([]byte, blockSize*numCh*bytesPerSample),
	}
}

// Read implements io.Reader. It never fails.
func (r *blockReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			r.renderBlock()
		}

		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}

	return n, nil
}

// Frames returns the number of frames rendered so far.
func (r *blockReader) Frames() uint64 { return r.frames.Load() }

func (r *blockReader) renderBlock() {
	blockSize := len(r.buf[0])
	total := len(r.source[0])

	for c := range r.view {
		r.view[c] = r.buf[c][:blockSize]
		for i := range r.view[c] {
			r.view[c][i] = r.source[c][(r.pos+i)%total]
		}
	}

	r.pos = (r.pos + blockSize) % total
	r.proc.Process(r.view)

	numCh := len(r.view)
	for i := range blockSize {
		for c := range numCh {
			bits := math.Float32bits(float32(r.view[c][i]))
			binary.LittleEndian.PutUint32(r.pcm[(i*numCh+c)*bytesPerSample:], bits)
		}
	}

	r.pending = r.pcm
	r.frames.Add(uint64(blockSize))
}
