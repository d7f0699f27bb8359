package lattice

import (
	"fmt"

	"github.com/katalvlaran/gohmm/numkernel"
)

// Backward runs the log-space backward recurrence over a T×N lattice:
//
//	beta[T-1][i] = 0
//	beta[t][i]   = logsumexp_j(logTrans[i][j] + logFrameProb[t+1][j] + beta[t+1][j])
//
// for t = T-2 downto 0. Complexity: O(T*N^2).
func Backward(logTrans [][]float64, logFrameProb [][]float64) (beta [][]float64, err error) {
	n := len(logTrans)
	if n == 0 {
		return nil, fmt.Errorf("Backward: %w", ErrEmptyDimensions)
	}
	if err := validateSquare(logTrans, n); err != nil {
		return nil, fmt.Errorf("Backward: %w", err)
	}
	t := len(logFrameProb)
	if t == 0 {
		return [][]float64{}, nil
	}
	if err := validateFrames(logFrameProb, n); err != nil {
		return nil, fmt.Errorf("Backward: %w", err)
	}

	beta = make([][]float64, t)
	beta[t-1] = make([]float64, n)
	// beta[T-1] = 0 (log-space 0 := probability 1).

	terms := make([]float64, n)
	for step := t - 2; step >= 0; step-- {
		beta[step] = make([]float64, n)
		next := beta[step+1]
		nextFrame := logFrameProb[step+1]
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				terms[j] = addLog(addLog(logTrans[i][j], nextFrame[j]), next[j])
			}
			beta[step][i] = numkernel.LogSumExp(terms)
		}
	}

	return beta, nil
}
