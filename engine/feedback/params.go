package feedback

import (
	"math"

	"github.com/cwbudde/algo-fxcore/engine"
)

// Parameter ids.
const (
	ParamDelayTime = iota
	ParamFeedback
	ParamDiffusion
	ParamModulation
	ParamDamping
	ParamCrossFeed
	ParamShimmer
	ParamFreeze
	ParamMix
)

var paramInfos = []engine.ParamInfo{
	ParamDelayTime:  {Name: "Delay Time", Default: 0.35, SmoothingMs: 80},
	ParamFeedback:   {Name: "Feedback", Default: 0.5},
	ParamDiffusion:  {Name: "Diffusion", Default: 0.5},
	ParamModulation: {Name: "Modulation", Default: 0.2},
	ParamDamping:    {Name: "Damping", Default: 0.3},
	ParamCrossFeed:  {Name: "Cross-feed", Default: 0},
	ParamShimmer:    {Name: "Shimmer", Default: 0},
	ParamFreeze:     {Name: "Freeze", Default: 0, SmoothingMs: 1},
	ParamMix:        {Name: "Mix", Default: 0.3},
}

// Physical ranges.
const (
	minDelayMs = 10.0
	maxDelayMs = 1000.0

	// MaxFeedback is the hard ceiling on loop gain.
	MaxFeedback = 0.98

	maxModDepthMs = 4.0
	minModRateHz  = 0.05
	maxModRateHz  = 1.5

	maxDampingHz = 18000.0
	dampingOcts  = 6.0

	freezeThreshold = 0.5
)

// delayMs maps a normalized value exponentially onto [10 ms, 1 s].
func delayMs(v float64) float64 {
	return minDelayMs * math.Pow(maxDelayMs/minDelayMs, v)
}

// feedbackGain maps a normalized value linearly onto [0, MaxFeedback].
func feedbackGain(v float64) float64 {
	return min(v*MaxFeedback, MaxFeedback)
}

// dampingHz maps 0 (bright) .. 1 (dark) onto 18 kHz .. 281 Hz.
func dampingHz(v float64) float64 {
	return maxDampingHz * math.Pow(2, -v*dampingOcts)
}

func modRateHz(v float64) float64 {
	return minModRateHz + (maxModRateHz-minModRateHz)*v*v
}
