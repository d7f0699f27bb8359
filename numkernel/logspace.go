package numkernel

import "math"

// NegInf is the log-space sentinel for probability zero. Every log-space
// primitive in this package treats NegInf as an ordinary value subject to
// the rule (-Inf) + x = -Inf, and never produces NaN from an all-(-Inf)
// input.
var NegInf = math.Inf(-1)

// LogSumExp returns log(Σ exp(v[i])), computed as m + log(Σ exp(v[i]-m))
// where m = max(v), the standard shift-for-stability trick. If every entry
// of v is -Inf (or v is empty), LogSumExp returns -Inf rather than NaN.
//
// Complexity: O(len(v)).
func LogSumExp(v []float64) float64 {
	if len(v) == 0 {
		return math.Inf(-1)
	}

	m := math.Inf(-1)
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	if math.IsInf(m, -1) {
		// every entry is -Inf (or NaN absent by contract): log(0) = -Inf.
		return math.Inf(-1)
	}

	var sum float64
	for _, x := range v {
		sum += math.Exp(x - m)
	}
	return m + math.Log(sum)
}

// LogMatVecLog computes y[j] = logsumexp_i(logA[i][j] + logX[i]) for a
// square log-space matrix logA (N×N) and a log-space vector logX (length N).
// This is the log-space analogue of y = xᵀA for a transition matrix. The
// lattice recurrences compute their own per-step sums inline and do not
// call it.
//
// Complexity: O(N²).
func LogMatVecLog(logA [][]float64, logX []float64) []float64 {
	n := len(logX)
	y := make([]float64, n)
	terms := make([]float64, n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			terms[i] = addLog(logA[i][j], logX[i])
		}
		y[j] = LogSumExp(terms)
	}
	return y
}

// addLog implements the sentinel rule (-Inf) + x = -Inf without relying on
// IEEE-754 producing NaN for (-Inf)+(+Inf), which never occurs here since
// both operands are always ≤ 0 in well-formed log-probabilities, but is
// guarded explicitly for robustness against a caller passing +Inf.
func addLog(a, b float64) float64 {
	if math.IsInf(a, -1) || math.IsInf(b, -1) {
		return math.Inf(-1)
	}
	return a + b
}

// LogNormalize returns a copy of v shifted so that LogSumExp(result) == 0,
// i.e. exp(result) sums to 1. Used to turn an unnormalized log-probability
// row (e.g. Viterbi deltas, a log-likelihood row) into a log-space
// probability distribution.
//
// Complexity: O(len(v)).
func LogNormalize(v []float64) []float64 {
	total := LogSumExp(v)
	out := make([]float64, len(v))
	if math.IsInf(total, -1) {
		// all-zero mass: leave as -Inf, consistent with the sentinel rule.
		for i := range out {
			out[i] = math.Inf(-1)
		}
		return out
	}
	for i, x := range v {
		out[i] = x - total
	}
	return out
}
