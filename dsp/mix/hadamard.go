// Package mix provides the orthogonal mixing matrix used by feedback delay
// networks.
package mix

import (
	"fmt"
	"math"
)

// Hadamard is an N×N Sylvester Hadamard matrix scaled by 1/√N, which makes it
// orthonormal and its own inverse.
type Hadamard struct {
	n     int
	coeff []float64 // row-major, already scaled
}

// NewHadamard returns the normalized matrix of order n (a power of two).
func NewHadamard(n int) (*Hadamard, error) {
	if n < 1 || n&(n-1) != 0 {
		return nil, fmt.Errorf("hadamard order must be a power of two: %d", n)
	}

	h := &Hadamard{n: n, coeff: make([]float64, n*n)}
	scale := 1 / math.Sqrt(float64(n))

	for i := range n {
		for j := range n {
			// H[i][j] = (-1)^popcount(i&j)
			sign := 1.0
			for b := i & j; b != 0; b &= b - 1 {
				sign = -sign
			}

			h.coeff[i*n+j] = sign * scale
		}
	}

	return h, nil
}

// Order returns N.
func (h *Hadamard) Order() int { return h.n }

// At returns the scaled entry (i, j).
func (h *Hadamard) At(i, j int) float64 { return h.coeff[i*h.n+j] }

// Apply computes dst[i] = Σ_j src[j]·H[i][j]. dst and src must both hold N
// values and must not alias.
func (h *Hadamard) Apply(dst, src []float64) {
	n := h.n
	for i := range n {
		row := h.coeff[i*n : i*n+n]

		var acc float64
		for j, v := range src[:n] {
			acc += v * row[j]
		}

		dst[i] = acc
	}
}

// Apply4 is the unrolled normalized 4×4 transform used on the per-sample path.
func Apply4(v *[4]float64) {
	a, b, c, d := v[0], v[1], v[2], v[3]
	v[0] = 0.5 * (a + b + c + d)
	v[1] = 0.5 * (a - b + c - d)
	v[2] = 0.5 * (a + b - c - d)
	v[3] = 0.5 * (a - b - c + d)
}
