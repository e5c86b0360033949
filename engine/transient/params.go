package transient

import (
	"math"

	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/meko-christian/algo-approx"
)

// Parameter ids.
const (
	ParamAttack = iota
	ParamSustain
	ParamAttackTime
	ParamReleaseTime
	ParamSeparation
	ParamDetectionMode
	ParamOutput
	ParamMix
)

var paramInfos = []engine.ParamInfo{
	ParamAttack:        {Name: "Attack", Default: 0.5},
	ParamSustain:       {Name: "Sustain", Default: 0.5},
	ParamAttackTime:    {Name: "Attack Time", Default: 0.2},
	ParamReleaseTime:   {Name: "Release Time", Default: 0.3},
	ParamSeparation:    {Name: "Separation", Default: 0.5},
	ParamDetectionMode: {Name: "Detection Mode", Default: 0, SmoothingMs: 1},
	ParamOutput:        {Name: "Output", Default: 0.5},
	ParamMix:           {Name: "Mix", Default: 1},
}

const (
	// MaxShapeDB is the boost or cut at either end of Attack and Sustain.
	MaxShapeDB  = 15.0
	maxOutputDB = 12.0

	minAttackMs  = 1.0
	maxAttackMs  = 50.0
	minReleaseMs = 20.0
	maxReleaseMs = 500.0

	// The slow detector attacks this many times slower than the fast one.
	slowAttackRatio = 20.0

	minCrossoverHz    = 200.0
	crossoverOctaves  = 4.0
	lookaheadMs       = 1.5
	transientEpsilon  = 1e-9
	transientStrength = 2.0

	// one period at 100 Hz, so RMS detection does not ripple on bass
	rmsWindowMs = 10.0

	ln10Over20 = math.Ln10 / 20
)

// shapeDB maps 0..1 onto -MaxShapeDB..+MaxShapeDB with 0.5 neutral.
func shapeDB(v float64) float64 {
	return (2*v - 1) * MaxShapeDB
}

func outputDB(v float64) float64 {
	return (2*v - 1) * maxOutputDB
}

func attackMs(v float64) float64 {
	return minAttackMs * math.Pow(maxAttackMs/minAttackMs, v)
}

func releaseMs(v float64) float64 {
	return minReleaseMs * math.Pow(maxReleaseMs/minReleaseMs, v)
}

// crossoverHz maps Separation onto 200 Hz .. 3.2 kHz.
func crossoverHz(v float64) float64 {
	return minCrossoverHz * math.Exp2(v*crossoverOctaves)
}

// dbToGain is the per-sample decibel conversion.
func dbToGain(db float64) float64 {
	return approx.FastExp(db * ln10Over20)
}
