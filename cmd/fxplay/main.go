// Command fxplay plays audio through one engine in real time.
//
// Usage:
//
//	fxplay [flags]
//
// The input loops until -duration elapses or the process is interrupted.
// A control goroutine sweeps the parameter named by -sweep with a slow LFO
// through UpdateParameters while the device pulls blocks.
//
// Examples:
//
//	fxplay -engine feedback -in guitar.wav -sweep "Delay Time"
//	fxplay -engine granular -preset cloud.json -duration 30
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/cwbudde/algo-fxcore/engine/registry"
	"github.com/cwbudde/algo-fxcore/internal/audiofile"
	"github.com/cwbudde/algo-fxcore/preset"
	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	kindName := flag.String("engine", "feedback", "engine kind")
	in := flag.String("in", "", "input WAV path (empty: built-in pad)")
	presetPath := flag.String("preset", "", "preset JSON for the engine")
	sweep := flag.String("sweep", "", "parameter name swept by the control LFO")
	sweepHz := flag.Float64("sweep-rate", 0.1, "control LFO rate in Hz")
	controlMs := flag.Int("control-ms", 20, "control update interval in milliseconds")
	duration := flag.Duration("duration", 0, "stop after this long (0: until interrupted)")
	blockSize := flag.Int("block", 256, "processing block size in frames")
	bufferMs := flag.Int("buffer-ms", 40, "device buffer length in milliseconds")
	seed := flag.Uint64("seed", 1, "random seed")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log, options{
		kind:      *kindName,
		in:        *in,
		preset:    *presetPath,
		sweep:     *sweep,
		sweepHz:   *sweepHz,
		control:   time.Duration(*controlMs) * time.Millisecond,
		duration:  *duration,
		blockSize: *blockSize,
		buffer:    time.Duration(*bufferMs) * time.Millisecond,
		seed:      *seed,
	}); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	kind      string
	in        string
	preset    string
	sweep     string
	sweepHz   float64
	control   time.Duration
	duration  time.Duration
	blockSize int
	buffer    time.Duration
	seed      uint64
}

func (o options) validate() error {
	switch {
	case o.blockSize <= 0:
		return fmt.Errorf("-block must be > 0: %d", o.blockSize)
	case o.buffer < 0:
		return fmt.Errorf("-buffer-ms must be >= 0: %v", o.buffer)
	case o.sweep != "" && o.control <= 0:
		return fmt.Errorf("-control-ms must be > 0 with -sweep: %v", o.control)
	}

	return nil
}

func run(log *logrus.Logger, opt options) error {
	if err := opt.validate(); err != nil {
		return err
	}

	kind, err := registry.ParseKind(opt.kind)
	if err != nil {
		return err
	}

	source, sr := pad(48000), 48000
	if opt.in != "" {
		source, sr, err = audiofile.Read(opt.in)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}

	// the device is always stereo
	if len(source) == 1 {
		source = [][]float64{source[0], source[0]}
	}

	proc, err := registry.New(kind, engine.WithSeed(opt.seed), engine.WithLogger(log))
	if err != nil {
		return err
	}

	if opt.preset != "" {
		res, err := preset.Load(opt.preset)
		if err != nil {
			return err
		}

		if res.Kind != kind {
			return fmt.Errorf("preset is for %s, not %s", res.Kind, kind)
		}

		res.Apply(proc)
	}

	if err := proc.Prepare(float64(sr), opt.blockSize); err != nil {
		return err
	}

	sweepID := -1
	if opt.sweep != "" {
		for id := range proc.NumParameters() {
			if proc.ParameterName(id) == opt.sweep {
				sweepID = id
			}
		}

		if sweepID < 0 {
			return fmt.Errorf("%w: %s has no %q", preset.ErrUnknownParameter, kind, opt.sweep)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opt.duration > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, opt.duration)
		defer cancel()
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sr,
		ChannelCount: len(source),
		Format:       oto.FormatFloat32LE,
		BufferSize:   opt.buffer,
	})
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	<-ready

	reader := newBlockReader(proc, source, opt.blockSize)
	player := otoCtx.NewPlayer(reader)
	defer player.Close()

	log.WithFields(logrus.Fields{
		"engine":      kind.String(),
		"sample_rate": sr,
		"block":       opt.blockSize,
		"latency":     proc.LatencySamples(),
	}).Info("playing")

	player.Play()

	g, ctx := errgroup.WithContext(ctx)
	if sweepID >= 0 {
		g.Go(func() error {
			return controlLoop(ctx, proc, sweepID, opt.sweepHz, opt.control)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	fields := logrus.Fields{"seconds": float64(reader.Frames()) / float64(sr)}
	if r, ok := proc.(engine.StatsReporter); ok {
		log.WithFields(r.Stats().Fields()).WithFields(fields).Info("stopped")
	} else {
		log.WithFields(fields).Info("stopped")
	}

	return nil
}

// controlLoop sends a sinusoidal sweep of one parameter until ctx ends.
func controlLoop(ctx context.Context, proc engine.Processor, id int, rateHz float64, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("control interval must be > 0: %v", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	update := map[int]float64{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			update[id] = sweepValue(now.Sub(start).Seconds(), rateHz)
			proc.UpdateParameters(update)
		}
	}
}

func sweepValue(t, rateHz float64) float64 {
	return 0.5 + 0.5*math.Sin(2*math.Pi*rateHz*t)
}

// pad is a 4 s two-voice chord used without -in.
func pad(sampleRate int) [][]float64 {
	n := 4 * sampleRate
	l := make([]float64, n)
	r := make([]float64, n)
	sr := float64(sampleRate)

	for i := range n {
		t := float64(i) / sr
		env := math.Sin(math.Pi * t / 4)
		l[i] = 0.2 * env * math.Sin(2*math.Pi*220*t)
		r[i] = 0.2 * env * math.Sin(2*math.Pi*277.18*t)
	}

	return [][]float64{l, r}
}
