package main

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/cwbudde/algo-fxcore/engine/registry"
	"github.com/cwbudde/algo-fxcore/preset"
	"github.com/sirupsen/logrus"
)

type renderJob struct {
	kind       registry.Kind
	input      [][]float64
	sampleRate int
	blockSize  int
	tail       int  // extra frames rendered after the input
	compensate bool // drop the engine's reported latency from the output
	seed       uint64
	preset     *preset.Resolved
	automation func() (automation, error)
	log        logrus.FieldLogger
}

type renderResult struct {
	kind    registry.Kind
	output  [][]float64
	latency int
	stats   engine.StatsSnapshot
}

// render runs one engine over the whole input block by block.
func render(ctx context.Context, job renderJob) (renderResult, error) {
	if len(job.input) == 0 || len(job.input[0]) == 0 {
		return renderResult{}, fmt.Errorf("%s: empty input", job.kind)
	}

	log := job.log.WithField("engine", job.kind.String())

	proc, err := registry.New(job.kind,
		engine.WithChannels(len(job.input)),
		engine.WithSeed(job.seed),
		engine.WithLogger(log),
	)
	if err != nil {
		return renderResult{}, err
	}

	// Prepare snaps parameters, so the preset starts without a ramp.
	if job.preset != nil && job.preset.Kind == job.kind {
		job.preset.Apply(proc)
	}

	if err := proc.Prepare(float64(job.sampleRate), job.blockSize); err != nil {
		return renderResult{}, fmt.Errorf("%s: %w", job.kind, err)
	}

	var auto automation
	if job.automation != nil {
		auto, err = job.automation()
		if err != nil {
			return renderResult{}, err
		}
		defer auto.Close()
	}

	ids := make(map[string]int, proc.NumParameters())
	for id := range proc.NumParameters() {
		ids[proc.ParameterName(id)] = id
	}

	latency := proc.LatencySamples()
	skip := 0

	if job.compensate {
		skip = latency
	}

	numCh := len(job.input)
	inFrames := len(job.input[0])
	total := inFrames + job.tail + skip

	out := make([][]float64, numCh)
	for c := range out {
		out[c] = make([]float64, inFrames+job.tail)
	}

	buf := engine.NewBuffer(numCh, job.blockSize)
	view := make(engine.Buffer, numCh)
	updates := make(map[int]float64, len(ids))

	for pos := 0; pos < total; pos += job.blockSize {
		if err := ctx.Err(); err != nil {
			return renderResult{}, err
		}

		n := min(job.blockSize, total-pos)

		if auto != nil {
			values, err := auto.At(float64(pos) / float64(job.sampleRate))
			if err != nil {
				return renderResult{}, err
			}

			clear(updates)

			for name, v := range values {
				id, ok := ids[name]
				if !ok {
					return renderResult{}, fmt.Errorf("%w: %s has no %q", preset.ErrUnknownParameter, job.kind, name)
				}

				updates[id] = v
			}

			if len(updates) > 0 {
				proc.UpdateParameters(updates)
			}
		}

		for c := range view {
			view[c] = buf[c][:n]
			clear(view[c])

			if pos < inFrames {
				copy(view[c], job.input[c][pos:min(pos+n, inFrames)])
			}
		}

		proc.Process(view)

		for c := range view {
			for i, v := range view[c] {
				if o := pos + i - skip; o >= 0 && o < len(out[c]) {
					out[c][o] = v
				}
			}
		}
	}

	res := renderResult{kind: job.kind, output: out, latency: latency}
	if r, ok := proc.(engine.StatsReporter); ok {
		res.stats = r.Stats()
	}

	return res, nil
}
