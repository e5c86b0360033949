// Package denormal installs the process-wide denormal guard and provides the
// per-value flush used on every recursive DSP state variable.
//
// Go offers no portable way to set the flush-to-zero (FTZ) and
// denormals-are-zero (DAZ) bits of the floating-point control register, and
// goroutines migrate between OS threads, so a register write would not stick.
// Enable therefore records the hardware capability once and the guarantee is
// carried by Flush, which feedback paths call explicitly.
package denormal

import (
	"sync"
	"sync/atomic"
)

// Threshold is the magnitude below which Flush returns exact zero.
const Threshold = 1e-30

// Status describes the guard after Enable.
type Status struct {
	// Enabled reports whether Enable has run.
	Enabled bool
	// HardwareFTZ reports whether the CPU has FTZ/DAZ-capable vector units.
	HardwareFTZ bool
	// Architecture is runtime.GOARCH at detection time.
	Architecture string
}

var (
	once    sync.Once
	enabled atomic.Bool
	status  Status
)

// Enable installs the guard. It is idempotent and safe for concurrent use;
// engines call it from their constructors.
func Enable() {
	once.Do(func() {
		status = detect()
		status.Enabled = true
		enabled.Store(true)
	})
}

// Enabled reports whether Enable has been called.
func Enabled() bool {
	return enabled.Load()
}

// CurrentStatus returns the guard status. It is the zero Status before Enable.
func CurrentStatus() Status {
	if !enabled.Load() {
		return Status{}
	}

	return status
}

// Flush returns 0 for |x| < Threshold and x otherwise.
// Values outside the denormal range pass through bit-exact.
func Flush(x float64) float64 {
	if x > -Threshold && x < Threshold {
		return 0
	}

	return x
}

// FlushSlice applies Flush to every element of buf.
func FlushSlice(buf []float64) {
	for i, v := range buf {
		buf[i] = Flush(v)
	}
}
