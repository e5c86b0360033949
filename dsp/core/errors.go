// Package core holds numeric helpers and limits shared by the DSP packages.
package core

import "errors"

// MaxChannels is the widest channel layout any engine processes.
const MaxChannels = 2

var (
	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("sample rate must be finite and > 0")
	// ErrInvalidBlockSize is returned for non-positive block sizes.
	ErrInvalidBlockSize = errors.New("block size must be > 0")
)
