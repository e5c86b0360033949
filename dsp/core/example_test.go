package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-fxcore/dsp/core"
)

func ExampleTimeConstantCoeff() {
	// 10 ms at 48 kHz: the state covers 1-1/e of a step after 480 samples
	a := core.TimeConstantCoeff(10, 48000)
	fmt.Printf("%.6f\n", a)

	// below the minimum the time is raised to 1 ms
	fmt.Println(core.TimeConstantCoeff(0.1, 48000) == core.TimeConstantCoeff(core.MinTimeConstantMs, 48000))

	// Output:
	// 0.997919
	// true
}

func ExampleClampUnit() {
	fmt.Println(core.ClampUnit(-0.5), core.ClampUnit(0.25), core.ClampUnit(7), core.NextPowerOfTwo(100))

	// Output:
	// 0 0.25 1 128
}
