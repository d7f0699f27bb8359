package paramguard

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/gohmm/errs"
)

// DefaultEpsilon is the tolerance used by ValidateStochastic and the
// symmetry check in ValidateCovarianceDense.
const DefaultEpsilon = 1e-9

// NormalizeRow returns max(v[i]+prior-1, 0) for every i, then divides by
// the row sum; if the sum is 0, it returns a uniform distribution instead.
// This is the M-step re-estimation rule shared by start_prob and every row
// of trans_mat (and every row-stochastic emission parameter), under this
// module's "alpha" prior-pseudocount convention (see SPEC_FULL.md §4.3.6).
//
// Complexity: O(len(v)).
func NormalizeRow(v []float64, prior float64) []float64 {
	out := make([]float64, len(v))
	var sum float64
	for i, x := range v {
		y := x + prior - 1
		if y < 0 {
			y = 0
		}
		out[i] = y
		sum += y
	}
	if sum <= 0 {
		uniform := 1.0 / float64(len(v))
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// ValidateStochastic checks that every row of M sums to 1 within eps and
// has no negative entries.
//
// Complexity: O(rows*cols).
func ValidateStochastic(m [][]float64, eps float64) error {
	for i, row := range m {
		var sum float64
		for j, v := range row {
			if v < -eps {
				return fmt.Errorf("ValidateStochastic: row %d col %d is negative (%v): %w", i, j, v, errs.ErrNotStochastic)
			}
			sum += v
		}
		if math.Abs(sum-1.0) > eps {
			return fmt.Errorf("ValidateStochastic: row %d sums to %v, want 1: %w", i, sum, errs.ErrNotStochastic)
		}
	}
	return nil
}

// ValidateCovarianceDense checks that cov is square, symmetric within eps,
// and positive-definite, confirmed two independent ways: a Cholesky
// factorization attempt (gonum.org/v1/gonum/mat) and a Jacobi
// eigendecomposition requiring every eigenvalue to be > 0. Agreement
// between both paths catches the edge case where one method's numerical
// slack masks a genuinely non-PD matrix.
//
// Complexity: O(D^3).
func ValidateCovarianceDense(cov [][]float64, eps float64) error {
	n := len(cov)
	for _, row := range cov {
		if len(row) != n {
			return fmt.Errorf("ValidateCovarianceDense: %w", errs.ErrShapeMismatch)
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(cov[i][j]-cov[j][i]) > eps {
				return fmt.Errorf("ValidateCovarianceDense: %w", errs.ErrNonPositiveDefinite)
			}
		}
	}

	flat := make([]float64, n*n)
	for i := 0; i < n; i++ {
		copy(flat[i*n:(i+1)*n], cov[i])
	}
	sym := mat.NewSymDense(n, flat)
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return fmt.Errorf("ValidateCovarianceDense: Cholesky attempt failed: %w", errs.ErrNonPositiveDefinite)
	}

	eigs, err := eigenvaluesSymmetric(cov, eps, 100)
	if err != nil {
		return fmt.Errorf("ValidateCovarianceDense: %w", err)
	}
	for _, e := range eigs {
		if e <= 0 {
			return fmt.Errorf("ValidateCovarianceDense: non-positive eigenvalue %v: %w", e, errs.ErrNonPositiveDefinite)
		}
	}

	return nil
}

// ValidateCovarianceDiag checks that every entry of a diagonal/spherical
// covariance representation is strictly positive.
//
// Complexity: O(len(variance)).
func ValidateCovarianceDiag(variance []float64) error {
	for i, v := range variance {
		if v <= 0 {
			return fmt.Errorf("ValidateCovarianceDiag: entry %d is %v, want > 0: %w", i, v, errs.ErrNonPositiveDefinite)
		}
	}
	return nil
}
