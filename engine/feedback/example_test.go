package feedback_test

import (
	"fmt"

	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/cwbudde/algo-fxcore/engine/feedback"
)

func ExampleEngine_Process() {
	fx := feedback.New(engine.WithSeed(7))
	if err := fx.Prepare(48000, 256); err != nil {
		fmt.Println("error:", err)
		return
	}

	fx.UpdateParameters(map[int]float64{
		feedback.ParamDelayTime: 0.3,
		feedback.ParamFeedback:  0.7,
		feedback.ParamMix:       0.5,
	})

	buf := engine.NewBuffer(2, 256)
	buf[0][0], buf[1][0] = 1, 1
	fx.Process(buf)

	fmt.Println(fx.NumParameters(), fx.ParameterName(feedback.ParamShimmer), fx.LatencySamples())
	// Output:
	// 9 Shimmer 0
}
