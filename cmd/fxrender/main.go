// Command fxrender renders audio offline through one or more engines.
//
// Usage:
//
//	fxrender [flags]
//
// Each engine named by -engines renders the same input in parallel and writes
// its own WAV file. Without -in a test signal is generated.
//
// Examples:
//
//	fxrender -in loop.wav -engines feedback -out out-{engine}.wav
//	fxrender -signal drums -engines transient,granular -preset cloud.json
//	fxrender -in pad.wav -engines granular -script sweep.lua
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/algo-fxcore/dsp/dither"
	"github.com/cwbudde/algo-fxcore/dsp/rng"
	"github.com/cwbudde/algo-fxcore/engine/registry"
	"github.com/cwbudde/algo-fxcore/internal/audiofile"
	"github.com/cwbudde/algo-fxcore/measure/level"
	"github.com/cwbudde/algo-fxcore/measure/spectral"
	"github.com/cwbudde/algo-fxcore/preset"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	in := flag.String("in", "", "input WAV path (empty: generate -signal)")
	signal := flag.String("signal", "drums", "generated input: drums, noise or sine")
	duration := flag.Float64("duration", 4, "generated input length in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "sample rate for generated input")
	engines := flag.String("engines", strings.Join(kindNames(), ","), "comma-separated engine kinds")
	out := flag.String("out", "fx-{engine}.wav", "output WAV path; {engine} is replaced by the kind")
	presetPath := flag.String("preset", "", "preset JSON applied to the engine of its kind")
	script := flag.String("script", "", "Lua script defining automate(t) returning parameter values")
	blockSize := flag.Int("block", 256, "processing block size in frames")
	tail := flag.Float64("tail", 2, "seconds rendered after the input ends")
	seed := flag.Uint64("seed", 1, "random seed")
	compensate := flag.Bool("compensate", true, "remove reported latency from the output")
	ditherName := flag.String("dither", "triangular", "dither before 16-bit output: none, rectangular or triangular")
	shaped := flag.Bool("noise-shaping", false, "first-order noise shaping of the dither error")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxrender [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders audio offline through the selected engines.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	kinds, err := parseKinds(*engines)
	if err != nil {
		log.Fatal(err)
	}

	ditherType, err := dither.ParseType(*ditherName)
	if err != nil {
		log.Fatal(err)
	}

	shaping := dither.Flat
	if *shaped {
		shaping = dither.FirstOrder
	}

	var input [][]float64

	sr := *sampleRate
	if *in != "" {
		input, sr, err = audiofile.Read(*in)
		if err != nil {
			log.Fatalf("reading input: %v", err)
		}
	} else {
		input, err = generate(*signal, sr, int(float64(sr)*(*duration)), *seed)
		if err != nil {
			log.Fatal(err)
		}
	}

	var pre *preset.Resolved
	if *presetPath != "" {
		res, err := preset.Load(*presetPath)
		if err != nil {
			log.Fatal(err)
		}

		pre = &res
	}

	var newAuto func() (automation, error)
	if *script != "" {
		// fail fast before spawning renders
		a, err := newLuaAutomation(*script, true)
		if err != nil {
			log.Fatal(err)
		}
		a.Close()

		newAuto = func() (automation, error) { return newLuaAutomation(*script, true) }
	}

	in0 := level.Measure(input[0])
	log.WithFields(logrus.Fields{
		"frames":      len(input[0]),
		"channels":    len(input),
		"sample_rate": sr,
		"peak_db":     fmt.Sprintf("%.1f", in0.PeakdB),
	}).Info("input ready")

	results := make([]renderResult, len(kinds))
	g, ctx := errgroup.WithContext(context.Background())

	for i, kind := range kinds {
		g.Go(func() error {
			start := time.Now()

			res, err := render(ctx, renderJob{
				kind:       kind,
				input:      input,
				sampleRate: sr,
				blockSize:  *blockSize,
				tail:       int(math.Max(0, *tail) * float64(sr)),
				compensate: *compensate,
				seed:       *seed,
				preset:     pre,
				automation: newAuto,
				log:        log,
			})
			if err != nil {
				return err
			}

			sum := level.Measure(res.output[0])

			centroid, err := spectralCentroid(res.output[0], sr)
			if err != nil {
				return err
			}

			if err := requantize(res.output, 16, ditherType, shaping, *seed); err != nil {
				return err
			}

			path := outputPath(*out, kind)
			if err := audiofile.Write(path, sr, res.output); err != nil {
				return err
			}

			results[i] = res

			log.WithFields(res.stats.Fields()).WithFields(logrus.Fields{
				"engine":      kind.String(),
				"path":        path,
				"latency":     res.latency,
				"rms_db":      fmt.Sprintf("%.1f", sum.RMSdB),
				"peak_db":     fmt.Sprintf("%.1f", sum.PeakdB),
				"centroid_hz": fmt.Sprintf("%.0f", centroid),
				"elapsed":     time.Since(start).Round(time.Millisecond),
			}).Info("render done")

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}

	for _, res := range results {
		if res.stats.AbortedBlocks > 0 || res.stats.ScrubbedSamples > 0 {
			log.WithField("engine", res.kind.String()).Warn("safety limits were hit during rendering")
		}
	}
}

func kindNames() []string {
	names := make([]string, len(registry.Kinds))
	for i, k := range registry.Kinds {
		names[i] = k.String()
	}

	return names
}

func parseKinds(list string) ([]registry.Kind, error) {
	var kinds []registry.Kind

	seen := make(map[registry.Kind]bool)

	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}

		k, err := registry.ParseKind(name)
		if err != nil {
			return nil, err
		}

		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}

	if len(kinds) == 0 {
		return nil, fmt.Errorf("no engines selected")
	}

	return kinds, nil
}

func outputPath(pattern string, kind registry.Kind) string {
	if strings.Contains(pattern, "{engine}") {
		return strings.ReplaceAll(pattern, "{engine}", kind.String())
	}

	ext := filepath.Ext(pattern)

	return strings.TrimSuffix(pattern, ext) + "-" + kind.String() + ext
}

// generate builds a stereo test signal.
func generate(kind string, sampleRate, frames int, seed uint64) ([][]float64, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("generated signal needs a positive duration")
	}

	l := make([]float64, frames)
	r := rng.New(seed)
	sr := float64(sampleRate)

	switch kind {
	case "noise":
		for i := range l {
			l[i] = 0.25 * r.Bipolar()
		}
	case "sine":
		for i := range l {
			l[i] = 0.5 * math.Sin(2*math.Pi*220*float64(i)/sr)
		}
	case "drums":
		period := sampleRate / 2
		tau := 0.03 * sr

		for i := range l {
			age := float64(i % period)
			body := math.Sin(2 * math.Pi * 60 * age / sr)
			l[i] = 0.6 * math.Exp(-age/tau) * (0.6*body + 0.4*r.Bipolar())
		}
	default:
		return nil, fmt.Errorf("unknown signal %q", kind)
	}

	return [][]float64{l, append([]float64(nil), l...)}, nil
}

// requantize dithers every channel onto the grid of a bits-deep integer
// format, each channel with its own noise sequence.
func requantize(chans [][]float64, bits int, typ dither.Type, shaping []float64, seed uint64) error {
	for c, ch := range chans {
		q, err := dither.NewQuantizer(bits,
			dither.WithType(typ),
			dither.WithShaping(shaping),
			dither.WithSeed(seed+uint64(c)+1),
		)
		if err != nil {
			return err
		}

		q.ProcessInPlace(ch)
	}

	return nil
}

// spectralCentroid averages 4096-point power spectra over sig.
func spectralCentroid(sig []float64, sampleRate int) (float64, error) {
	const size = 4096

	a, err := spectral.NewAnalyzer(size, float64(sampleRate))
	if err != nil {
		return 0, err
	}

	pow, err := a.Average(sig)
	if err != nil {
		return 0, err
	}

	return spectral.Centroid(pow, float64(sampleRate), size), nil
}
