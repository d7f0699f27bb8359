package estimator

import "fmt"

// Sample draws an initial state from start_prob, then alternates
// transition sampling and emission sampling to produce nSamples
// observations and their generating states.
func (m *Model) Sample(nSamples int) ([][]float64, []int, error) {
	if err := m.requireParams(); err != nil {
		return nil, nil, fmt.Errorf("Model.Sample: %w", err)
	}
	if nSamples <= 0 {
		return [][]float64{}, []int{}, nil
	}

	states := make([]int, nSamples)
	obs := make([][]float64, nSamples)

	state := drawCategorical(m.startProb, m.rng.Float64())
	states[0] = state
	x, err := m.family.SampleFromState(state, m.rng)
	if err != nil {
		return nil, nil, fmt.Errorf("Model.Sample: %w", err)
	}
	obs[0] = x

	for t := 1; t < nSamples; t++ {
		state = drawCategorical(m.transMat[state], m.rng.Float64())
		states[t] = state
		x, err := m.family.SampleFromState(state, m.rng)
		if err != nil {
			return nil, nil, fmt.Errorf("Model.Sample: %w", err)
		}
		obs[t] = x
	}

	return obs, states, nil
}

// drawCategorical returns the first index k such that u <= sum(p[0:k+1]),
// falling back to the last index if rounding error leaves u past the total.
func drawCategorical(p []float64, u float64) int {
	var cum float64
	for k, v := range p {
		cum += v
		if u <= cum {
			return k
		}
	}
	return len(p) - 1
}
