package lattice

import (
	"fmt"
	"math"
)

// Viterbi computes the maximum a posteriori state sequence:
//
//	delta[0][j] = logStart[j] + logFrameProb[0][j]
//	delta[t][j] = max_i(delta[t-1][i] + logTrans[i][j]) + logFrameProb[t][j]
//	psi[t][j]   = argmax_i(...)
//
// Ties in the argmax are broken toward the lowest state index. For T=0,
// Viterbi returns (logProb=0, path=[]int{}, nil).
//
// Complexity: O(T*N^2).
func Viterbi(logStart []float64, logTrans [][]float64, logFrameProb [][]float64) (logProb float64, path []int, err error) {
	n := len(logStart)
	if n == 0 {
		return 0, nil, fmt.Errorf("Viterbi: %w", ErrEmptyDimensions)
	}
	if err := validateSquare(logTrans, n); err != nil {
		return 0, nil, fmt.Errorf("Viterbi: %w", err)
	}
	t := len(logFrameProb)
	if t == 0 {
		return 0, []int{}, nil
	}
	if err := validateFrames(logFrameProb, n); err != nil {
		return 0, nil, fmt.Errorf("Viterbi: %w", err)
	}

	delta := make([][]float64, t)
	psi := make([][]int, t)
	delta[0] = make([]float64, n)
	psi[0] = make([]int, n)
	for j := 0; j < n; j++ {
		delta[0][j] = logStart[j] + logFrameProb[0][j]
	}

	for step := 1; step < t; step++ {
		delta[step] = make([]float64, n)
		psi[step] = make([]int, n)
		prev := delta[step-1]
		for j := 0; j < n; j++ {
			best := math.Inf(-1)
			bestI := 0
			for i := 0; i < n; i++ {
				cand := addLog(prev[i], logTrans[i][j])
				if cand > best {
					best = cand
					bestI = i
				}
				// ties broken toward lowest index: strict '>' above already
				// keeps the first (lowest-index) i encountered on ties.
			}
			delta[step][j] = best + logFrameProb[step][j]
			psi[step][j] = bestI
		}
	}

	// terminate: pick the best final state, lowest index on ties.
	last := delta[t-1]
	bestFinal := math.Inf(-1)
	bestJ := 0
	for j := 0; j < n; j++ {
		if last[j] > bestFinal {
			bestFinal = last[j]
			bestJ = j
		}
	}

	path = make([]int, t)
	path[t-1] = bestJ
	for step := t - 1; step > 0; step-- {
		path[step-1] = psi[step][path[step]]
	}

	return bestFinal, path, nil
}
