package engine

import (
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/smooth"
)

// ParamInfo describes one normalized control.
type ParamInfo struct {
	Name    string
	Default float64
	// SmoothingMs is the block-rate time constant; 0 uses
	// smooth.DefaultSmoothingMs.
	SmoothingMs float64
}

// ParamBank holds one smoothed value per parameter id. Ids are dense,
// 0..Len()-1.
type ParamBank struct {
	infos  []ParamInfo
	params []*smooth.Param
}

// NewParamBank creates parameters at their defaults.
func NewParamBank(infos []ParamInfo) *ParamBank {
	b := &ParamBank{
		infos:  append([]ParamInfo(nil), infos...),
		params: make([]*smooth.Param, len(infos)),
	}

	for i, info := range infos {
		b.params[i] = smooth.New(core.ClampUnit(info.Default))
	}

	return b
}

// Len returns the parameter count.
func (b *ParamBank) Len() int { return len(b.params) }

// Name returns the name of id, or "" when out of range.
func (b *ParamBank) Name(id int) string {
	if id < 0 || id >= len(b.infos) {
		return ""
	}

	return b.infos[id].Name
}

// Info returns the description of id.
func (b *ParamBank) Info(id int) (ParamInfo, bool) {
	if id < 0 || id >= len(b.infos) {
		return ParamInfo{}, false
	}

	return b.infos[id], true
}

// Lookup returns the id of the parameter called name.
func (b *ParamBank) Lookup(name string) (int, bool) {
	for i, info := range b.infos {
		if info.Name == name {
			return i, true
		}
	}

	return -1, false
}

// Set stores a target clamped to [0, 1]. Unknown ids and NaN are ignored.
// Safe from any goroutine.
func (b *ParamBank) Set(id int, value float64) {
	if id < 0 || id >= len(b.params) || math.IsNaN(value) {
		return
	}

	b.params[id].SetTarget(core.ClampUnit(value))
}

// Update applies Set to every entry of values.
func (b *ParamBank) Update(values map[int]float64) {
	for id, v := range values {
		b.Set(id, v)
	}
}

// Prepare configures smoothing for updateRate block updates per second and
// snaps every current value to its target.
func (b *ParamBank) Prepare(updateRate float64) {
	for i, p := range b.params {
		ms := b.infos[i].SmoothingMs
		if ms <= 0 {
			ms = smooth.DefaultSmoothingMs
		}

		p.SetSmoothingTime(ms, updateRate)
		p.Snap()
	}
}

// UpdateBlock advances every parameter by one block.
func (b *ParamBank) UpdateBlock() {
	for _, p := range b.params {
		p.UpdateBlock()
	}
}

// Value returns the block value of id.
func (b *ParamBank) Value(id int) float64 {
	return b.params[id].BlockValue()
}

// Target returns the pending target of id.
func (b *ParamBank) Target(id int) float64 {
	return b.params[id].Target()
}

// Snap jumps every parameter to its target.
func (b *ParamBank) Snap() {
	for _, p := range b.params {
		p.Snap()
	}
}
