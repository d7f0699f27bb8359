package numkernel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/gohmm/numkernel"
)

func TestLogSumExp_Basic(t *testing.T) {
	got := numkernel.LogSumExp([]float64{math.Log(0.1), math.Log(0.4), math.Log(0.5)})
	assert.InDelta(t, 0.0, got, 1e-9, "log of probabilities summing to 1 should be 0")
}

func TestLogSumExp_AllNegInf(t *testing.T) {
	got := numkernel.LogSumExp([]float64{math.Inf(-1), math.Inf(-1)})
	assert.True(t, math.IsInf(got, -1), "all -Inf input must yield -Inf, not NaN")
	assert.False(t, math.IsNaN(got), "LogSumExp must never produce NaN")
}

func TestLogSumExp_Empty(t *testing.T) {
	got := numkernel.LogSumExp(nil)
	assert.True(t, math.IsInf(got, -1), "empty input is log(0)")
}

func TestLogSumExp_SingleValue(t *testing.T) {
	got := numkernel.LogSumExp([]float64{-3.5})
	assert.InDelta(t, -3.5, got, 1e-12)
}

func TestLogMatVecLog_Identity(t *testing.T) {
	// log(identity) has 0 on the diagonal and -Inf elsewhere.
	logA := [][]float64{
		{0, math.Inf(-1)},
		{math.Inf(-1), 0},
	}
	logX := []float64{math.Log(0.3), math.Log(0.7)}
	y := numkernel.LogMatVecLog(logA, logX)
	assert.InDelta(t, math.Log(0.3), y[0], 1e-9)
	assert.InDelta(t, math.Log(0.7), y[1], 1e-9)
}

func TestLogNormalize_SumsToOne(t *testing.T) {
	v := []float64{1.0, 2.0, 0.5}
	out := numkernel.LogNormalize(v)
	var sum float64
	for _, x := range out {
		sum += math.Exp(x)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
