package transient_test

import (
	"fmt"

	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/cwbudde/algo-fxcore/engine/transient"
)

func ExampleEngine_LatencySamples() {
	ts := transient.New(engine.WithChannels(1))
	fmt.Println(ts.LatencySamples())

	if err := ts.Prepare(48000, 128); err != nil {
		fmt.Println("error:", err)
		return
	}

	ts.UpdateParameters(map[int]float64{transient.ParamAttack: 0.9})
	fmt.Println(ts.LatencySamples(), ts.ParameterName(transient.ParamAttack))
	// Output:
	// 0
	// 72 Attack
}
