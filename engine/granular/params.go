package granular

import (
	"math"

	"github.com/cwbudde/algo-fxcore/engine"
)

// Parameter ids.
const (
	ParamDensity = iota
	ParamGrainSize
	ParamPosition
	ParamPitchScatter
	ParamSpray
	ParamStereoSpread
	ParamChaos
	ParamFeedback
	ParamMix
)

var paramInfos = []engine.ParamInfo{
	ParamDensity:      {Name: "Density", Default: 0.5},
	ParamGrainSize:    {Name: "Grain Size", Default: 0.4},
	ParamPosition:     {Name: "Position", Default: 0.3},
	ParamPitchScatter: {Name: "Pitch Scatter", Default: 0.2},
	ParamSpray:        {Name: "Spray", Default: 0.3},
	ParamStereoSpread: {Name: "Stereo Spread", Default: 0.5},
	ParamChaos:        {Name: "Chaos", Default: 0.2},
	ParamFeedback:     {Name: "Feedback", Default: 0},
	ParamMix:          {Name: "Mix", Default: 0.5},
}

const (
	recordSeconds = 2.0

	minRate = 2.0   // grains per second
	maxRate = 200.0 // grains per second

	minGrainMs = 10.0
	maxGrainMs = 500.0
	// Spawn lengths are clamped to this range.
	minGrainSec = 0.005
	maxGrainSec = 0.5

	maxPositionSec = 1.5
	maxSpraySec    = 0.5
	maxScatterOct  = 2.0

	minAmplitude = 0.7

	// MaxFeedback bounds the grain output fed back into the recording.
	MaxFeedback  = 0.98
	feedbackGain = 0.9

	// maxActiveGrains caps concurrent grains per channel.
	maxActiveGrains = 32

	chaosRateHz    = 0.3
	chaosPosSec    = 0.25
	chaosIntervalO = 1.0 // octaves of interval modulation at full chaos
)

func grainRate(v float64) float64 {
	return minRate * math.Pow(maxRate/minRate, v)
}

func grainMs(v float64) float64 {
	return minGrainMs * math.Pow(maxGrainMs/minGrainMs, v)
}

func feedbackAmount(v float64) float64 {
	return min(v*feedbackGain, MaxFeedback)
}
