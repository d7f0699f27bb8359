package paramguard

import (
	"fmt"
	"math"
)

// eigenvaluesSymmetric computes all eigenvalues of a real symmetric matrix
// via the Jacobi rotation method, the way a covariance matrix's
// positive-definiteness can be confirmed independently of a Cholesky
// attempt: a matrix is PD iff every eigenvalue is > 0.
//
// Adapted from lvlath's matrix/ops Eigen: same Jacobi sweep, generalized
// from the ops.Matrix interface down to plain [][]float64 since covariance
// blocks here are small (D×D, D typically << 100) and never need the
// graph-adjacency storage lvlath's version was built against.
//
// Complexity: O(n^3) per sweep, worst-case O(maxIter*n^3).
func eigenvaluesSymmetric(cov [][]float64, tol float64, maxIter int) ([]float64, error) {
	n := len(cov)
	for i := 0; i < n; i++ {
		if len(cov[i]) != n {
			return nil, fmt.Errorf("eigenvaluesSymmetric: non-square input")
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(cov[i][j]-cov[j][i]) > tol {
				return nil, ErrAsymmetric
			}
		}
	}

	a := make([][]float64, n)
	for i := range a {
		a[i] = append([]float64(nil), cov[i]...)
	}

	var iter int
	for iter = 0; iter < maxIter; iter++ {
		p, q := 0, 0
		maxOff := 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if off := math.Abs(a[i][j]); off > maxOff {
					maxOff = off
					p, q = i, j
				}
			}
		}
		if maxOff < tol {
			break
		}

		app, aqq, apq := a[p][p], a[q][q], a[p][q]
		theta := (aqq - app) / (2 * apq)
		tRot := math.Copysign(1.0/(math.Abs(theta)+math.Sqrt(theta*theta+1)), theta)
		c := 1.0 / math.Sqrt(tRot*tRot+1)
		s := tRot * c

		for i := 0; i < n; i++ {
			if i != p && i != q {
				aip, aiq := a[i][p], a[i][q]
				a[i][p], a[p][i] = c*aip-s*aiq, c*aip-s*aiq
				a[i][q], a[q][i] = s*aip+c*aiq, s*aip+c*aiq
			}
		}
		a[p][p] = c*c*app - 2*c*s*apq + s*s*aqq
		a[q][q] = s*s*app + 2*c*s*apq + c*c*aqq
		a[p][q] = 0.0
		a[q][p] = 0.0
	}

	if iter == maxIter {
		return nil, ErrEigenFailed
	}

	eigs := make([]float64, n)
	for i := 0; i < n; i++ {
		eigs[i] = a[i][i]
	}
	return eigs, nil
}
