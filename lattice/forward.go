package lattice

import (
	"fmt"

	"github.com/katalvlaran/gohmm/numkernel"
)

// Forward runs the log-space forward recurrence over a T×N lattice:
//
//	alpha[0][j]   = logStart[j] + logFrameProb[0][j]
//	alpha[t][j]   = logsumexp_i(alpha[t-1][i] + logTrans[i][j]) + logFrameProb[t][j]
//	logProb       = logsumexp_j(alpha[T-1][j])
//
// T may be 0, in which case Forward returns an empty alpha and logProb=0,
// per the boundary rule in the lattice spec.
//
// Complexity: O(T*N^2).
func Forward(logStart []float64, logTrans [][]float64, logFrameProb [][]float64) (alpha [][]float64, logProb float64, err error) {
	n := len(logStart)
	if n == 0 {
		return nil, 0, fmt.Errorf("Forward: %w", ErrEmptyDimensions)
	}
	if err := validateSquare(logTrans, n); err != nil {
		return nil, 0, fmt.Errorf("Forward: %w", err)
	}
	t := len(logFrameProb)
	if t == 0 {
		return [][]float64{}, 0, nil
	}
	if err := validateFrames(logFrameProb, n); err != nil {
		return nil, 0, fmt.Errorf("Forward: %w", err)
	}

	alpha = make([][]float64, t)
	alpha[0] = make([]float64, n)
	for j := 0; j < n; j++ {
		alpha[0][j] = logStart[j] + logFrameProb[0][j]
	}

	terms := make([]float64, n)
	for step := 1; step < t; step++ {
		alpha[step] = make([]float64, n)
		prev := alpha[step-1]
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				terms[i] = addLog(prev[i], logTrans[i][j])
			}
			alpha[step][j] = numkernel.LogSumExp(terms) + logFrameProb[step][j]
		}
	}

	logProb = numkernel.LogSumExp(alpha[t-1])
	return alpha, logProb, nil
}

func validateSquare(m [][]float64, n int) error {
	if len(m) != n {
		return ErrShapeMismatch
	}
	for _, row := range m {
		if len(row) != n {
			return ErrShapeMismatch
		}
	}
	return nil
}

func validateFrames(frames [][]float64, n int) error {
	for _, row := range frames {
		if len(row) != n {
			return ErrShapeMismatch
		}
	}
	return nil
}
