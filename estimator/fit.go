package estimator

import (
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/gohmm/convergence"
	"github.com/katalvlaran/gohmm/emission"
	"github.com/katalvlaran/gohmm/errs"
	"github.com/katalvlaran/gohmm/lattice"
	"github.com/katalvlaran/gohmm/paramguard"
	"github.com/katalvlaran/gohmm/splitter"
)

// aggregateStats is the EM iteration's shared sufficient-statistics
// accumulator: start_prob and trans_mat counts, plus the emission family's
// own accumulator.
type aggregateStats struct {
	start  []float64   // N
	trans  [][]float64 // N x N
	family emission.Stats
}

func (m *Model) newAggregateStats() *aggregateStats {
	trans := make([][]float64, m.n)
	for i := range trans {
		trans[i] = make([]float64, m.n)
	}
	return &aggregateStats{
		start:  make([]float64, m.n),
		trans:  trans,
		family: m.family.NewStats(),
	}
}

// subResult holds one subsequence's E-step output, computed independently
// so subsequences can be processed by a bounded worker pool.
type subResult struct {
	logProb float64
	x       [][]float64
	gamma   [][]float64
	xi      [][]float64
	err     error
}

// Fit runs initialisation followed by up to n_iter EM iterations. Only
// NonPositiveDefinite (after ParamGuard's flooring attempt) and
// IllConditioned abort early; otherwise Fit stops silently at n_iter and
// lets the ConvergenceMonitor record whether it converged.
func (m *Model) Fit(x [][]float64, lengths []int) error {
	if err := m.initialize(x); err != nil {
		return fmt.Errorf("Model.Fit: %w", err)
	}

	subs, err := splitter.Split(x, lengths)
	if err != nil {
		return fmt.Errorf("Model.Fit: %w", err)
	}

	m.monitor = convergence.NewMonitor(m.opts.tol, m.opts.nIter, m.opts.verbose)

	for iter := 0; iter < m.opts.nIter; iter++ {
		stats := m.newAggregateStats()

		iterLogProb, err := m.eStep(subs, stats)
		if err != nil {
			return fmt.Errorf("Model.Fit: iteration %d: %w", iter, err)
		}
		if math.IsInf(iterLogProb, -1) {
			return fmt.Errorf("Model.Fit: iteration %d: %w", iter, errs.ErrIllConditioned)
		}

		if err := m.mStep(stats); err != nil {
			return fmt.Errorf("Model.Fit: iteration %d: %w", iter, err)
		}
		if err := m.validateParams(); err != nil {
			return fmt.Errorf("Model.Fit: iteration %d: %w", iter, err)
		}

		m.monitor.Report(iterLogProb)
		if w, ok := m.family.(emission.Warner); ok {
			for _, msg := range w.Warnings() {
				m.monitor.Warn(msg)
			}
		}
		if m.monitor.Converged() {
			break
		}
	}

	m.fitted = true
	return nil
}

// eStep computes B, forward/backward, posteriors and xi-sums for every
// subsequence (in parallel, bounded by WithMaxWorkers), then folds each
// subsequence's contribution into stats in fixed original-input order so
// the floating-point reduction stays bitwise reproducible regardless of
// goroutine completion order.
func (m *Model) eStep(subs [][][]float64, stats *aggregateStats) (float64, error) {
	results := make([]subResult, len(subs))

	sem := make(chan struct{}, m.opts.maxWorkers)
	var wg sync.WaitGroup
	for idx, sub := range subs {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, sub [][]float64) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = m.computeSubResult(sub)
		}(idx, sub)
	}
	wg.Wait()

	var total float64
	for idx, res := range results {
		if res.err != nil {
			return 0, fmt.Errorf("subsequence %d: %w", idx, res.err)
		}
		total += res.logProb
		for j := 0; j < m.n; j++ {
			if len(res.gamma) > 0 {
				stats.start[j] += res.gamma[0][j]
			}
			for i := 0; i < m.n; i++ {
				stats.trans[i][j] += res.xi[i][j]
			}
		}
		if err := m.family.Accumulate(stats.family, res.x, res.gamma); err != nil {
			return 0, fmt.Errorf("subsequence %d: %w", idx, err)
		}
	}
	return total, nil
}

// computeSubResult runs the lattice recurrence selected by
// WithImplementation over one subsequence and returns its posteriors,
// xi-sum and log-probability. It reads only the Model's current
// (read-only during E-step) parameters.
func (m *Model) computeSubResult(sub [][]float64) subResult {
	logB, err := m.family.LogLikelihood(sub)
	if err != nil {
		return subResult{err: err}
	}

	logStart := logProbVector(m.startProb)
	logTrans := logProbMatrix(m.transMat)

	switch m.opts.impl {
	case lattice.ScalingImplementation:
		probB := expMatrix(logB)
		fwd, scale, logProb, err := lattice.ForwardScaling(m.startProb, m.transMat, probB)
		if err != nil {
			return subResult{err: err}
		}
		bwd, err := lattice.BackwardScaling(m.transMat, probB, scale)
		if err != nil {
			return subResult{err: err}
		}
		gamma := scalingPosteriors(fwd, bwd, scale)
		xi := scalingXiSum(fwd, bwd, m.transMat, probB, scale)
		return subResult{logProb: logProb, x: sub, gamma: gamma, xi: xi}
	default:
		alpha, logProb, err := lattice.Forward(logStart, logTrans, logB)
		if err != nil {
			return subResult{err: err}
		}
		beta, err := lattice.Backward(logTrans, logB)
		if err != nil {
			return subResult{err: err}
		}
		gamma := lattice.Posteriors(alpha, beta, logProb)
		xi := lattice.XiSum(alpha, beta, logTrans, logB, logProb)
		return subResult{logProb: logProb, x: sub, gamma: gamma, xi: xi}
	}
}

// mStep re-estimates start_prob and trans_mat (if selected by params) and
// delegates the emission family's own parameters to family.MStep.
func (m *Model) mStep(stats *aggregateStats) error {
	if containsLetter(m.opts.params, 's') {
		m.startProb = paramguard.NormalizeRow(stats.start, m.opts.startPrior)
	}
	if containsLetter(m.opts.params, 't') {
		for i := 0; i < m.n; i++ {
			m.transMat[i] = paramguard.NormalizeRow(stats.trans[i], m.opts.transPrior)
		}
	}

	fMask := familyMask(m.opts.params)
	if fMask == "" {
		return nil
	}
	return m.family.MStep(stats.family, fMask)
}

func logProbVector(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, p := range v {
		out[i] = math.Log(p)
	}
	return out
}

func logProbMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = logProbVector(row)
	}
	return out
}

func expMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = math.Exp(v)
		}
	}
	return out
}

// scalingPosteriors computes gamma[t][j] = fwd[t][j]*bwd[t][j]*scale[t].
// ForwardScaling normalises fwd to sum to 1 per row and BackwardScaling
// divides bwd[t] by scale[t], so multiplying by scale[t] restores gamma.
func scalingPosteriors(fwd, bwd [][]float64, scale []float64) [][]float64 {
	t := len(fwd)
	gamma := make([][]float64, t)
	for step := 0; step < t; step++ {
		n := len(fwd[step])
		gamma[step] = make([]float64, n)
		for j := 0; j < n; j++ {
			gamma[step][j] = fwd[step][j] * bwd[step][j] * scale[step]
		}
	}
	return gamma
}

// scalingXiSum computes the probability-space analogue of lattice.XiSum:
// xi[i][j] = sum_t fwd[t][i]*trans[i][j]*frameProb[t+1][j]*bwd[t+1][j].
func scalingXiSum(fwd, bwd, trans, frameProb [][]float64, scale []float64) [][]float64 {
	n := len(trans)
	xi := make([][]float64, n)
	for i := range xi {
		xi[i] = make([]float64, n)
	}
	t := len(fwd)
	if t <= 1 {
		return xi
	}
	for step := 0; step < t-1; step++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				xi[i][j] += fwd[step][i] * trans[i][j] * frameProb[step+1][j] * bwd[step+1][j]
			}
		}
	}
	return xi
}
