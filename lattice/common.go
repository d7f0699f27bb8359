package lattice

import "math"

// addLog implements the log-space sentinel rule (-Inf) + x = -Inf.
func addLog(a, b float64) float64 {
	if math.IsInf(a, -1) || math.IsInf(b, -1) {
		return math.Inf(-1)
	}
	return a + b
}
