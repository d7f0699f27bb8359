package convergence

import (
	"fmt"
	"math"
)

// epsilonSqrt is sqrt(machine epsilon), the slack the monitor allows before
// flagging an iteration's log-probability as a non-monotone regression.
var epsilonSqrt = math.Sqrt(2.220446049250313e-16)

// Warning is one non-fatal event surfaced during Fit: a non-monotone
// log-probability step, or an emission family reporting something like
// covariance flooring via emission.Warner.
type Warning struct {
	Iter    int
	Message string
}

// Monitor tracks log-probability history across EM iterations and decides
// termination. Its history is intentionally capped at two entries: the
// termination rule only ever needs the most recent delta. It also collects
// Warnings for the caller to inspect after Fit returns — when Verbose is
// set, each warning is also printed via fmt.Printf as it is recorded.
type Monitor struct {
	tol     float64
	nIter   int
	verbose bool

	iter     int
	history  []float64 // FIFO of at most 2 entries
	warnings []Warning
}

// NewMonitor constructs a Monitor with the given tolerance, iteration
// budget, and verbosity flag.
func NewMonitor(tol float64, nIter int, verbose bool) *Monitor {
	return &Monitor{tol: tol, nIter: nIter, verbose: verbose}
}

// Report records one iteration's total log-probability. It returns true if
// the new value regressed below the previous one by more than
// sqrt(machine epsilon) — a non-monotone increase, recorded as a Warning
// (and printed immediately if Verbose) rather than aborting Fit.
//
// Complexity: O(1).
func (m *Monitor) Report(logProb float64) (nonMonotoneWarning bool) {
	if len(m.history) > 0 {
		last := m.history[len(m.history)-1]
		if logProb < last-epsilonSqrt {
			nonMonotoneWarning = true
			m.warn(fmt.Sprintf("log-probability regressed from %v to %v", last, logProb))
		}
	}

	m.history = append(m.history, logProb)
	if len(m.history) > 2 {
		m.history = m.history[len(m.history)-2:]
	}
	m.iter++

	return nonMonotoneWarning
}

// Warn records a caller-supplied warning (e.g. an emission family reporting
// covariance flooring via emission.Warner) against the current iteration.
func (m *Monitor) Warn(message string) {
	m.warn(message)
}

func (m *Monitor) warn(message string) {
	m.warnings = append(m.warnings, Warning{Iter: m.iter, Message: message})
	if m.verbose {
		fmt.Printf("gohmm: iteration %d: %s\n", m.iter, message)
	}
}

// Warnings returns a copy of every Warning recorded so far, oldest first.
func (m *Monitor) Warnings() []Warning {
	out := make([]Warning, len(m.warnings))
	copy(out, m.warnings)
	return out
}

// Converged reports whether the EM loop should stop: either the iteration
// budget is exhausted, or the last two reported log-probabilities differ
// by less than tol.
//
// Complexity: O(1).
func (m *Monitor) Converged() bool {
	if m.iter >= m.nIter {
		return true
	}
	if len(m.history) == 2 {
		delta := m.history[1] - m.history[0]
		if delta < m.tol {
			return true
		}
	}
	return false
}

// Iterations returns the number of iterations reported so far.
func (m *Monitor) Iterations() int { return m.iter }

// Verbose reports whether the monitor was configured for verbose output.
func (m *Monitor) Verbose() bool { return m.verbose }

// History returns a copy of the current (at most two-entry) log-probability
// history, oldest first.
func (m *Monitor) History() []float64 {
	out := make([]float64, len(m.history))
	copy(out, m.history)
	return out
}
