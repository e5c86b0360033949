// Command fxinfo prints the parameters and latency of the built-in engines.
//
// Usage:
//
//	fxinfo [flags] [engine ...]
//
// Without arguments it prints every engine.
//
// Examples:
//
//	fxinfo granular
//	fxinfo -sample-rate 96000 transient
//	fxinfo -list
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/cwbudde/algo-fxcore/engine/registry"
)

type paramLister interface {
	Params() *engine.ParamBank
}

func main() {
	sampleRate := flag.Float64("sample-rate", 48000, "sample rate used to report latency")
	block := flag.Int("block", 256, "maximum block size")
	list := flag.Bool("list", false, "list available engine names")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxinfo [flags] [engine ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints engine parameters, defaults and latency.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *list {
		for _, k := range registry.Kinds {
			fmt.Println(k)
		}

		return
	}

	kinds, err := resolveKinds(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for i, k := range kinds {
		if i > 0 {
			fmt.Println()
		}

		if err := printEngine(os.Stdout, k, *sampleRate, *block); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

func resolveKinds(names []string) ([]registry.Kind, error) {
	if len(names) == 0 {
		return registry.Kinds, nil
	}

	kinds := make([]registry.Kind, 0, len(names))

	for _, name := range names {
		k, err := registry.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w (use -list to see available)", err)
		}

		kinds = append(kinds, k)
	}

	return kinds, nil
}

func printEngine(w io.Writer, kind registry.Kind, sampleRate float64, block int) error {
	proc, err := registry.New(kind, engine.WithChannels(2))
	if err != nil {
		return err
	}

	if err := proc.Prepare(sampleRate, block); err != nil {
		return err
	}

	latency := proc.LatencySamples()
	if _, err := fmt.Fprintf(w, "%s: %d parameters, latency %d samples (%.2f ms)\n",
		kind, proc.NumParameters(), latency, 1000*float64(latency)/sampleRate); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Id\tName\tDefault\tSmoothing [ms]\n")
	fmt.Fprintf(tw, "--\t----\t-------\t--------------\n")

	bank, hasBank := proc.(paramLister)

	for id := range proc.NumParameters() {
		def, smoothing := "-", "-"

		if hasBank {
			if info, ok := bank.Params().Info(id); ok {
				def = fmt.Sprintf("%.3f", info.Default)
				if info.SmoothingMs > 0 {
					smoothing = fmt.Sprintf("%.0f", info.SmoothingMs)
				} else {
					smoothing = "default"
				}
			}
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", id, proc.ParameterName(id), def, smoothing)
	}

	return tw.Flush()
}
