package estimator

import (
	"fmt"

	"github.com/katalvlaran/gohmm/lattice"
	"github.com/katalvlaran/gohmm/splitter"
)

// Decode runs the configured algorithm (Viterbi or MAP) over every
// subsequence and returns the total log-probability and the concatenated
// state path.
func (m *Model) Decode(x [][]float64, lengths []int) (float64, []int, error) {
	if err := m.requireParams(); err != nil {
		return 0, nil, fmt.Errorf("Model.Decode: %w", err)
	}
	subs, err := splitter.Split(x, lengths)
	if err != nil {
		return 0, nil, fmt.Errorf("Model.Decode: %w", err)
	}

	logStart := logProbVector(m.startProb)
	logTrans := logProbMatrix(m.transMat)

	var total float64
	var path []int
	for _, sub := range subs {
		logB, err := m.family.LogLikelihood(sub)
		if err != nil {
			return 0, nil, fmt.Errorf("Model.Decode: %w", err)
		}

		switch m.opts.algorithm {
		case MAP:
			logProb, subPath, err := m.decodeMAP(logStart, logTrans, logB)
			if err != nil {
				return 0, nil, fmt.Errorf("Model.Decode: %w", err)
			}
			total += logProb
			path = append(path, subPath...)
		default:
			logProb, subPath, err := lattice.Viterbi(logStart, logTrans, logB)
			if err != nil {
				return 0, nil, fmt.Errorf("Model.Decode: %w", err)
			}
			total += logProb
			path = append(path, subPath...)
		}
	}
	if path == nil {
		path = []int{}
	}
	return total, path, nil
}

// decodeMAP decodes the per-timestep posterior-argmax path: for T=0 it
// returns (0, []int{}, nil), matching Forward/Viterbi's T=0 boundary rule.
func (m *Model) decodeMAP(logStart []float64, logTrans, logB [][]float64) (float64, []int, error) {
	if len(logB) == 0 {
		return 0, []int{}, nil
	}
	alpha, logProb, err := lattice.Forward(logStart, logTrans, logB)
	if err != nil {
		return 0, nil, err
	}
	beta, err := lattice.Backward(logTrans, logB)
	if err != nil {
		return 0, nil, err
	}
	gamma := lattice.Posteriors(alpha, beta, logProb)

	path := make([]int, len(gamma))
	for t, row := range gamma {
		path[t] = argmax(row)
	}
	return logProb, path, nil
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

// Predict is a convenience wrapper on Decode that discards the
// log-probability.
func (m *Model) Predict(x [][]float64, lengths []int) ([]int, error) {
	_, path, err := m.Decode(x, lengths)
	if err != nil {
		return nil, fmt.Errorf("Model.Predict: %w", err)
	}
	return path, nil
}
