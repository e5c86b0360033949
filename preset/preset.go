// Package preset reads and writes JSON parameter presets.
//
// A preset names one engine kind and its parameter values by parameter name:
//
//	{"engine": "granular", "params": {"Density": 0.4, "Mix": 0.5}}
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/cwbudde/algo-fxcore/engine/registry"
)

// ErrUnknownParameter is returned for parameter names the engine does not have.
var ErrUnknownParameter = errors.New("preset: unknown parameter")

// Preset is the on-disk form.
type Preset struct {
	Engine string             `json:"engine"`
	Params map[string]float64 `json:"params"`
}

// Resolved is a preset bound to an engine kind with parameter ids.
type Resolved struct {
	Kind   registry.Kind
	Values map[int]float64
}

// Decode reads a preset from r and resolves it. Unknown engines fail with
// registry.ErrUnknownKind, unknown parameter names with ErrUnknownParameter.
func Decode(r io.Reader) (Resolved, error) {
	var p Preset

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&p); err != nil {
		return Resolved{}, fmt.Errorf("preset: decode: %w", err)
	}

	return p.Resolve()
}

// Load reads and resolves the preset file at path.
func Load(path string) (Resolved, error) {
	f, err := os.Open(path)
	if err != nil {
		return Resolved{}, fmt.Errorf("preset: %w", err)
	}
	defer f.Close()

	res, err := Decode(f)
	if err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", path, err)
	}

	return res, nil
}

// Resolve maps the engine name to a kind and parameter names to ids.
func (p Preset) Resolve() (Resolved, error) {
	kind, err := registry.ParseKind(p.Engine)
	if err != nil {
		return Resolved{}, fmt.Errorf("preset: %w", err)
	}

	proc, err := registry.New(kind)
	if err != nil {
		return Resolved{}, fmt.Errorf("preset: %w", err)
	}

	ids := nameIndex(proc)
	values := make(map[int]float64, len(p.Params))

	for name, v := range p.Params {
		id, ok := ids[name]
		if !ok {
			return Resolved{}, fmt.Errorf("%w: %s has no %q", ErrUnknownParameter, kind, name)
		}

		values[id] = v
	}

	return Resolved{Kind: kind, Values: values}, nil
}

// Apply sends the resolved values to proc.
func (r Resolved) Apply(proc engine.Processor) {
	if len(r.Values) > 0 {
		proc.UpdateParameters(r.Values)
	}
}

// Capture builds a preset from explicit values of an engine of kind.
func Capture(kind registry.Kind, proc engine.Processor, values map[int]float64) Preset {
	p := Preset{Engine: kind.String(), Params: make(map[string]float64, len(values))}

	for id, v := range values {
		if name := proc.ParameterName(id); name != "" {
			p.Params[name] = v
		}
	}

	return p
}

// Encode writes p as indented JSON with parameters in name order.
func Encode(w io.Writer, p Preset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("preset: encode: %w", err)
	}

	return nil
}

// Names lists the parameter names of kind in id order.
func Names(kind registry.Kind) ([]string, error) {
	proc, err := registry.New(kind)
	if err != nil {
		return nil, err
	}

	names := make([]string, proc.NumParameters())
	for id := range names {
		names[id] = proc.ParameterName(id)
	}

	return names, nil
}

func nameIndex(proc engine.Processor) map[string]int {
	ids := make(map[string]int, proc.NumParameters())
	for id := range proc.NumParameters() {
		ids[proc.ParameterName(id)] = id
	}

	return ids
}
