package grain

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// DefaultEnvelopeSize is the number of points in the grain window table.
const DefaultEnvelopeSize = 1024

// EnvelopeTable is a precomputed grain window indexed by completion in [0, 1].
type EnvelopeTable struct {
	table []float64
	scale float64
}

// NewHannTable builds a Hann window of size points.
func NewHannTable(size int) (*EnvelopeTable, error) {
	if size < 2 {
		return nil, fmt.Errorf("grain envelope size must be >= 2: %d", size)
	}

	// hann(x) = sin²(πx), built as the elementwise square of a sine table.
	sine := make([]float64, size)
	for i := range sine {
		sine[i] = math.Sin(math.Pi * float64(i) / float64(size-1))
	}

	table := make([]float64, size)
	vecmath.MulBlock(table, sine, sine)

	return &EnvelopeTable{table: table, scale: float64(size - 1)}, nil
}

// Len returns the number of table points.
func (e *EnvelopeTable) Len() int { return len(e.table) }

// At returns the window value at completion phase, linearly interpolated.
// Phase is clamped to [0, 1].
func (e *EnvelopeTable) At(phase float64) float64 {
	if !(phase > 0) {
		return e.table[0]
	}

	if phase >= 1 {
		return e.table[len(e.table)-1]
	}

	pos := phase * e.scale
	i := int(pos)
	t := pos - float64(i)

	return e.table[i] + t*(e.table[i+1]-e.table[i])
}
