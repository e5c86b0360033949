//go:build !amd64 && !arm64

package denormal

import "runtime"

func detect() Status {
	return Status{Architecture: runtime.GOARCH}
}
