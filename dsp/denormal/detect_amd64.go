//go:build amd64

package denormal

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// SSE2 MXCSR carries both FTZ and DAZ on every x86-64 part.
func detect() Status {
	return Status{
		HardwareFTZ:  cpu.X86.HasSSE2,
		Architecture: runtime.GOARCH,
	}
}
