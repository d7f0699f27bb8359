package emission

import "fmt"

// CovarianceType selects one of the four covariance parameterisations
// shared by Gaussian and GMM: spherical (single scalar variance per
// state), diag (per-dimension variance per state), full (dense D×D
// covariance per state), tied (single dense D×D covariance shared by
// every state).
type CovarianceType int

const (
	// Spherical ties all D dimensions of a state to one scalar variance.
	Spherical CovarianceType = iota
	// Diag gives each dimension of a state its own variance.
	Diag
	// Full gives each state a dense D×D covariance matrix.
	Full
	// Tied shares one dense D×D covariance matrix across all states.
	Tied
)

// String implements fmt.Stringer.
func (c CovarianceType) String() string {
	switch c {
	case Spherical:
		return "spherical"
	case Diag:
		return "diag"
	case Full:
		return "full"
	case Tied:
		return "tied"
	default:
		return "unknown"
	}
}

// ParseCovarianceType maps the spec's covariance_type strings to a
// CovarianceType, rejecting anything else with ErrUnknownCovarianceType.
func ParseCovarianceType(s string) (CovarianceType, error) {
	switch s {
	case "spherical":
		return Spherical, nil
	case "diag":
		return Diag, nil
	case "full":
		return Full, nil
	case "tied":
		return Tied, nil
	default:
		return 0, fmt.Errorf("ParseCovarianceType(%q): %w", s, ErrUnknownCovarianceType)
	}
}

// outerAdd adds scale * (v v^T) into dst in place, where dst and v have
// matching dimension d. Used by full/tied covariance accumulation.
func outerAdd(dst [][]float64, v []float64, scale float64) {
	d := len(v)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			dst[i][j] += scale * v[i] * v[j]
		}
	}
}

// newSquare allocates a d x d zeroed matrix.
func newSquare(d int) [][]float64 {
	m := make([][]float64, d)
	for i := range m {
		m[i] = make([]float64, d)
	}
	return m
}
