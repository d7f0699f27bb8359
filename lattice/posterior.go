package lattice

import "math"

// Posteriors computes gamma[t][j] = exp(alpha[t][j] + beta[t][j] - logProb)
// for every t, j. Each row of the result sums to 1 within floating
// tolerance, except when logProb is -Inf (ill-conditioned sequence), in
// which case every entry is 0.
//
// Complexity: O(T*N).
func Posteriors(alpha, beta [][]float64, logProb float64) [][]float64 {
	t := len(alpha)
	gamma := make([][]float64, t)
	illConditioned := math.IsInf(logProb, -1)
	for step := 0; step < t; step++ {
		n := len(alpha[step])
		gamma[step] = make([]float64, n)
		if illConditioned {
			continue
		}
		for j := 0; j < n; j++ {
			gamma[step][j] = math.Exp(alpha[step][j] + beta[step][j] - logProb)
		}
	}
	return gamma
}

// XiSum computes the time-summed transition posterior:
//
//	xi[i][j] = exp(logsumexp_t(alpha[t][i] + logTrans[i][j] + logFrameProb[t+1][j] + beta[t+1][j]) - logProb)
//
// for t = 0..T-2. The result satisfies sum(xi) == T-1 (within tolerance) on
// a well-conditioned sequence. For T <= 1, XiSum returns an all-zero N×N
// matrix, per the lattice spec's T=1 boundary rule.
//
// Complexity: O(T*N^2).
func XiSum(alpha, beta [][]float64, logTrans [][]float64, logFrameProb [][]float64, logProb float64) [][]float64 {
	n := len(logTrans)
	xi := make([][]float64, n)
	for i := range xi {
		xi[i] = make([]float64, n)
	}

	t := len(alpha)
	if t <= 1 || math.IsInf(logProb, -1) {
		return xi
	}

	// Accumulate log-space terms per (i,j) across all t, then exponentiate
	// once at the end via a running logsumexp (online max-shift accumulation).
	logAcc := make([][]float64, n)
	for i := range logAcc {
		logAcc[i] = make([]float64, n)
		for j := range logAcc[i] {
			logAcc[i][j] = math.Inf(-1)
		}
	}

	for step := 0; step < t-1; step++ {
		frame := logFrameProb[step+1]
		nextBeta := beta[step+1]
		curAlpha := alpha[step]
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				term := addLog(addLog(curAlpha[i], logTrans[i][j]), addLog(frame[j], nextBeta[j]))
				logAcc[i][j] = logAddPair(logAcc[i][j], term)
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			xi[i][j] = math.Exp(logAcc[i][j] - logProb)
		}
	}

	return xi
}

// logAddPair returns log(exp(a)+exp(b)) without materializing a slice,
// for the online accumulation in XiSum's hot loop.
func logAddPair(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp(b-a))
}
