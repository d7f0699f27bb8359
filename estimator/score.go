package estimator

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/gohmm/errs"
	"github.com/katalvlaran/gohmm/lattice"
	"github.com/katalvlaran/gohmm/splitter"
)

// Score returns the sum of per-subsequence forward log-probabilities. It is
// a pure function of the Model's current parameters; Fit need not have run
// if the caller supplied parameters directly.
func (m *Model) Score(x [][]float64, lengths []int) (float64, error) {
	if err := m.requireParams(); err != nil {
		return 0, fmt.Errorf("Model.Score: %w", err)
	}
	subs, err := splitter.Split(x, lengths)
	if err != nil {
		return 0, fmt.Errorf("Model.Score: %w", err)
	}

	logStart := logProbVector(m.startProb)
	logTrans := logProbMatrix(m.transMat)

	var total float64
	for _, sub := range subs {
		logB, err := m.family.LogLikelihood(sub)
		if err != nil {
			return 0, fmt.Errorf("Model.Score: %w", err)
		}
		_, logProb, err := lattice.Forward(logStart, logTrans, logB)
		if err != nil {
			return 0, fmt.Errorf("Model.Score: %w", err)
		}
		total += logProb
	}
	return total, nil
}

// ScoreSamples returns the total log-probability and the concatenation of
// every subsequence's state posteriors gamma.
func (m *Model) ScoreSamples(x [][]float64, lengths []int) (float64, [][]float64, error) {
	if err := m.requireParams(); err != nil {
		return 0, nil, fmt.Errorf("Model.ScoreSamples: %w", err)
	}
	subs, err := splitter.Split(x, lengths)
	if err != nil {
		return 0, nil, fmt.Errorf("Model.ScoreSamples: %w", err)
	}

	logStart := logProbVector(m.startProb)
	logTrans := logProbMatrix(m.transMat)

	var total float64
	var posteriors [][]float64
	for _, sub := range subs {
		logB, err := m.family.LogLikelihood(sub)
		if err != nil {
			return 0, nil, fmt.Errorf("Model.ScoreSamples: %w", err)
		}
		alpha, logProb, err := lattice.Forward(logStart, logTrans, logB)
		if err != nil {
			return 0, nil, fmt.Errorf("Model.ScoreSamples: %w", err)
		}
		beta, err := lattice.Backward(logTrans, logB)
		if err != nil {
			return 0, nil, fmt.Errorf("Model.ScoreSamples: %w", err)
		}
		total += logProb
		posteriors = append(posteriors, lattice.Posteriors(alpha, beta, logProb)...)
	}
	return total, posteriors, nil
}

// PredictProba is ScoreSamples's posteriors, surfaced under its own method
// name for API parity with the spec's operation list.
func (m *Model) PredictProba(x [][]float64, lengths []int) ([][]float64, error) {
	_, posteriors, err := m.ScoreSamples(x, lengths)
	if err != nil {
		return nil, fmt.Errorf("Model.PredictProba: %w", err)
	}
	return posteriors, nil
}

// requireParams guards operations that are pure functions of Model
// parameters but still need start_prob/trans_mat/family to be set, either
// by Fit or by direct caller assignment.
func (m *Model) requireParams() error {
	if m.startProb == nil || m.transMat == nil {
		return errs.ErrNotFitted
	}
	if err := m.family.Validate(); errors.Is(err, errs.ErrNotFitted) {
		return err
	}
	return nil
}
