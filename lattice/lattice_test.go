package lattice_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gohmm/lattice"
)

// logMat converts a plain-space row-stochastic matrix to log space.
func logMat(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = math.Log(v)
		}
	}
	return out
}

func logVec(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Log(x)
	}
	return out
}

func buildFrameProb(emission [][]float64, obs []int) [][]float64 {
	frame := make([][]float64, len(obs))
	for t, o := range obs {
		frame[t] = make([]float64, len(emission))
		for j := range emission {
			frame[t][j] = emission[j][o]
		}
	}
	return frame
}

func TestForward_CategoricalScenario(t *testing.T) {
	start := []float64{0.6, 0.4}
	trans := [][]float64{{0.7, 0.3}, {0.4, 0.6}}
	emission := [][]float64{{0.1, 0.4, 0.5}, {0.6, 0.3, 0.1}}
	obs := []int{0, 1, 2, 2, 1, 0}
	frame := buildFrameProb(emission, obs)

	_, logProb, err := lattice.Forward(logVec(start), logMat(trans), logMat(frame))
	require.NoError(t, err)
	assert.InDelta(t, -7.4174, logProb, 1e-3)
}

func TestViterbi_CategoricalScenario(t *testing.T) {
	start := []float64{0.6, 0.4}
	trans := [][]float64{{0.7, 0.3}, {0.4, 0.6}}
	emission := [][]float64{{0.1, 0.4, 0.5}, {0.6, 0.3, 0.1}}
	obs := []int{0, 1, 2, 2, 1, 0}
	frame := buildFrameProb(emission, obs)

	_, path, err := lattice.Viterbi(logVec(start), logMat(trans), logMat(frame))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 1}, path)
}

func TestPosteriors_CategoricalScenarioRow0(t *testing.T) {
	start := []float64{0.6, 0.4}
	trans := [][]float64{{0.7, 0.3}, {0.4, 0.6}}
	emission := [][]float64{{0.1, 0.4, 0.5}, {0.6, 0.3, 0.1}}
	obs := []int{0, 1, 2, 2, 1, 0}
	frame := buildFrameProb(emission, obs)

	logStart := logVec(start)
	logTrans := logMat(trans)
	logFrame := logMat(frame)

	alpha, logProb, err := lattice.Forward(logStart, logTrans, logFrame)
	require.NoError(t, err)
	beta, err := lattice.Backward(logTrans, logFrame)
	require.NoError(t, err)

	gamma := lattice.Posteriors(alpha, beta, logProb)
	assert.InDelta(t, 0.1971, gamma[0][0], 1e-3)
	assert.InDelta(t, 0.8029, gamma[0][1], 1e-3)
}

func TestGaussianDiagScenario_ForwardAndViterbi(t *testing.T) {
	start := []float64{0.5, 0.5}
	trans := [][]float64{{0.9, 0.1}, {0.2, 0.8}}
	xs := []float64{0.1, 0.2, 3.1, 2.9, 0.0}
	means := []float64{0.0, 3.0}
	variance := 1.0

	frame := make([][]float64, len(xs))
	for t, x := range xs {
		frame[t] = make([]float64, 2)
		for j, mu := range means {
			diff := x - mu
			frame[t][j] = math.Exp(-0.5 * (math.Log(2*math.Pi*variance) + diff*diff/variance))
		}
	}

	logStart := logVec(start)
	logTrans := logMat(trans)
	logFrame := logMat(frame)

	_, logProb, err := lattice.Forward(logStart, logTrans, logFrame)
	require.NoError(t, err)
	assert.InDelta(t, -8.0913, logProb, 1e-3)

	_, path, err := lattice.Viterbi(logStart, logTrans, logFrame)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1, 0}, path)
}

func TestForward_ZeroLength(t *testing.T) {
	alpha, logProb, err := lattice.Forward([]float64{math.Log(0.5), math.Log(0.5)}, [][]float64{{0, math.Inf(-1)}, {math.Inf(-1), 0}}, nil)
	require.NoError(t, err)
	assert.Empty(t, alpha)
	assert.Equal(t, 0.0, logProb)
}

func TestXiSum_SingleTimestepIsZero(t *testing.T) {
	logStart := logVec([]float64{0.5, 0.5})
	logTrans := logMat([][]float64{{0.9, 0.1}, {0.2, 0.8}})
	logFrame := logMat([][]float64{{0.4, 0.6}})

	alpha, logProb, err := lattice.Forward(logStart, logTrans, logFrame)
	require.NoError(t, err)
	beta, err := lattice.Backward(logTrans, logFrame)
	require.NoError(t, err)

	xi := lattice.XiSum(alpha, beta, logTrans, logFrame, logProb)
	for _, row := range xi {
		for _, v := range row {
			assert.Equal(t, 0.0, v)
		}
	}

	gamma := lattice.Posteriors(alpha, beta, logProb)
	var sum float64
	for _, v := range gamma[0] {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestXiSum_SumsToTMinus1(t *testing.T) {
	start := []float64{0.6, 0.4}
	trans := [][]float64{{0.7, 0.3}, {0.4, 0.6}}
	emission := [][]float64{{0.1, 0.4, 0.5}, {0.6, 0.3, 0.1}}
	obs := []int{0, 1, 2, 2, 1, 0}
	frame := buildFrameProb(emission, obs)

	logStart := logVec(start)
	logTrans := logMat(trans)
	logFrame := logMat(frame)

	alpha, logProb, err := lattice.Forward(logStart, logTrans, logFrame)
	require.NoError(t, err)
	beta, err := lattice.Backward(logTrans, logFrame)
	require.NoError(t, err)

	xi := lattice.XiSum(alpha, beta, logTrans, logFrame, logProb)
	var sum float64
	for _, row := range xi {
		for _, v := range row {
			sum += v
		}
	}
	assert.InDelta(t, float64(len(obs)-1), sum, 1e-6)
}

func TestForwardBackwardDuality(t *testing.T) {
	start := []float64{0.6, 0.4}
	trans := [][]float64{{0.7, 0.3}, {0.4, 0.6}}
	emission := [][]float64{{0.1, 0.4, 0.5}, {0.6, 0.3, 0.1}}
	obs := []int{0, 1, 2, 2, 1, 0}
	frame := buildFrameProb(emission, obs)

	logStart := logVec(start)
	logTrans := logMat(trans)
	logFrame := logMat(frame)

	alpha, logProb, err := lattice.Forward(logStart, logTrans, logFrame)
	require.NoError(t, err)
	beta, err := lattice.Backward(logTrans, logFrame)
	require.NoError(t, err)

	terms := make([]float64, len(alpha[0]))
	for j := range terms {
		terms[j] = alpha[0][j] + beta[0][j]
	}
	dual := logSumExpLocal(terms)
	assert.InDelta(t, logProb, dual, 1e-9)
}

func logSumExpLocal(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	var sum float64
	for _, x := range v {
		sum += math.Exp(x - m)
	}
	return m + math.Log(sum)
}

func TestScalingMatchesLog(t *testing.T) {
	start := []float64{0.6, 0.4}
	trans := [][]float64{{0.7, 0.3}, {0.4, 0.6}}
	emission := [][]float64{{0.1, 0.4, 0.5}, {0.6, 0.3, 0.1}}
	obs := []int{0, 1, 2, 2, 1, 0}
	frame := buildFrameProb(emission, obs)

	logStart := logVec(start)
	logTrans := logMat(trans)
	logFrame := logMat(frame)

	_, logProbLog, err := lattice.Forward(logStart, logTrans, logFrame)
	require.NoError(t, err)

	_, scale, logProbScaling, err := lattice.ForwardScaling(start, trans, frame)
	require.NoError(t, err)
	require.Len(t, scale, len(obs))

	assert.InDelta(t, logProbLog, logProbScaling, 1e-8)
}

// TestViterbiGEPosteriorMAPDelta checks that the Viterbi log-probability is
// at least as large as the log-probability of the per-timestep posterior-MAP
// path evaluated under the same delta recurrence (Viterbi is, by
// construction, the maximum over all paths of that recurrence).
func TestViterbiGEPosteriorMAPDelta(t *testing.T) {
	start := []float64{0.6, 0.4}
	trans := [][]float64{{0.7, 0.3}, {0.4, 0.6}}
	emission := [][]float64{{0.1, 0.4, 0.5}, {0.6, 0.3, 0.1}}
	obs := []int{0, 1, 2, 2, 1, 0}
	frame := buildFrameProb(emission, obs)

	logStart := logVec(start)
	logTrans := logMat(trans)
	logFrame := logMat(frame)

	alpha, logProb, err := lattice.Forward(logStart, logTrans, logFrame)
	require.NoError(t, err)
	beta, err := lattice.Backward(logTrans, logFrame)
	require.NoError(t, err)
	gamma := lattice.Posteriors(alpha, beta, logProb)

	posteriorPath := make([]int, len(obs))
	for step, row := range gamma {
		posteriorPath[step] = argmax(row)
	}

	viterbiLogProb, viterbiPath, err := lattice.Viterbi(logStart, logTrans, logFrame)
	require.NoError(t, err)
	require.Len(t, viterbiPath, len(obs))

	pathLogProb := func(path []int) float64 {
		lp := logStart[path[0]] + logFrame[0][path[0]]
		for step := 1; step < len(path); step++ {
			lp += logTrans[path[step-1]][path[step]] + logFrame[step][path[step]]
		}
		return lp
	}

	assert.GreaterOrEqual(t, viterbiLogProb+1e-9, pathLogProb(posteriorPath))
}

func argmax(v []float64) int {
	best := 0
	for i, x := range v {
		if x > v[best] {
			best = i
		}
	}
	return best
}
