package numkernel

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/gohmm/errs"
)

// CholeskyLogDensity returns the log-density of a D-dimensional Gaussian
// N(mean, cov) at x, computed via the Cholesky factor L of cov:
//
//	-1/2 * (D*log(2*pi) + 2*sum(log(diag(L))) + ||L^-1 (x-mean)||^2)
//
// If cov is not positive-definite, minCovar*I is added once and the
// factorization retried; if it still fails, ErrNonPositiveDefinite is
// returned wrapped via errs.ErrNonPositiveDefinite.
//
// This is the host environment's "Cholesky factorisation, triangular
// solve" collaborator, backed by gonum.org/v1/gonum/mat.
//
// Complexity: O(D^3) for the factorization, O(D^2) for the solve.
func CholeskyLogDensity(mean, x []float64, cov [][]float64, minCovar float64) (float64, error) {
	d := len(mean)
	if len(x) != d || len(cov) != d {
		return 0, fmt.Errorf("CholeskyLogDensity: %w", errs.ErrShapeMismatch)
	}
	for _, row := range cov {
		if len(row) != d {
			return 0, fmt.Errorf("CholeskyLogDensity: %w", errs.ErrShapeMismatch)
		}
	}

	sym, err := symDenseFromRows(cov)
	if err != nil {
		return 0, fmt.Errorf("CholeskyLogDensity: %w", err)
	}
	var chol mat.Cholesky
	ok := chol.Factorize(sym)
	if !ok {
		floored := floorDiagonal(cov, minCovar)
		sym, err = symDenseFromRows(floored)
		if err != nil {
			return 0, fmt.Errorf("CholeskyLogDensity: %w", err)
		}
		ok = chol.Factorize(sym)
		if !ok {
			return 0, fmt.Errorf("CholeskyLogDensity: %w", errs.ErrNonPositiveDefinite)
		}
	}

	diff := make([]float64, d)
	for i := range diff {
		diff[i] = x[i] - mean[i]
	}
	diffVec := mat.NewVecDense(d, diff)

	var solved mat.VecDense
	if err := chol.SolveVecTo(&solved, diffVec); err != nil {
		return 0, fmt.Errorf("CholeskyLogDensity: solve: %w", errs.ErrNonPositiveDefinite)
	}

	quad := mat.Dot(diffVec, &solved)

	// 2*sum(log(diag(L))) == log(det(cov)); gonum exposes this directly.
	logDet := chol.LogDet()

	logDensity := -0.5 * (float64(d)*math.Log(2*math.Pi) + logDet + quad)
	return logDensity, nil
}

// symDenseFromRows builds a gonum SymDense from a dense row-major covariance,
// via this package's own Dense flat-array layout (the same N x N shape a
// covariance block or a trans_mat/emission_prob matrix takes). Only the
// upper triangle is read by gonum's SymDense, but callers are expected to
// pass an already-symmetric matrix (ParamGuard validates this elsewhere).
func symDenseFromRows(rows [][]float64) (*mat.SymDense, error) {
	d, err := DenseFromRows(rows)
	if err != nil {
		return nil, err
	}
	return mat.NewSymDense(d.Rows(), d.data), nil
}

// floorDiagonal returns a copy of cov with minCovar added to every diagonal
// entry, the spec's "add min_covar*I once and retry" recovery path.
func floorDiagonal(cov [][]float64, minCovar float64) [][]float64 {
	n := len(cov)
	out := make([][]float64, n)
	for i := range cov {
		out[i] = make([]float64, n)
		copy(out[i], cov[i])
		out[i][i] += minCovar
	}
	return out
}

// SampleMultivariateNormal draws x ~ N(mean, cov) via x = mean + L*z, where
// L is the lower Cholesky factor of cov and z is a vector of i.i.d.
// standard-normal draws. This is the correlated-coordinate counterpart to
// DiagGaussianLogDensity's axis-aligned shortcut: Full/Tied covariance
// genuinely couples coordinates, so sampling must go through the same
// factorization CholeskyLogDensity uses rather than drawing each coordinate
// independently from its marginal variance.
//
// If cov is not positive-definite, minCovar*I is added once and the
// factorization retried, matching CholeskyLogDensity's recovery path.
//
// Complexity: O(D^3) for the factorization, O(D^2) for L*z.
func SampleMultivariateNormal(mean []float64, cov [][]float64, minCovar float64, rng *rand.Rand) ([]float64, error) {
	d := len(mean)
	if len(cov) != d {
		return nil, fmt.Errorf("SampleMultivariateNormal: %w", errs.ErrShapeMismatch)
	}
	for _, row := range cov {
		if len(row) != d {
			return nil, fmt.Errorf("SampleMultivariateNormal: %w", errs.ErrShapeMismatch)
		}
	}

	sym, err := symDenseFromRows(cov)
	if err != nil {
		return nil, fmt.Errorf("SampleMultivariateNormal: %w", err)
	}
	var chol mat.Cholesky
	ok := chol.Factorize(sym)
	if !ok {
		floored := floorDiagonal(cov, minCovar)
		sym, err = symDenseFromRows(floored)
		if err != nil {
			return nil, fmt.Errorf("SampleMultivariateNormal: %w", err)
		}
		ok = chol.Factorize(sym)
		if !ok {
			return nil, fmt.Errorf("SampleMultivariateNormal: %w", errs.ErrNonPositiveDefinite)
		}
	}

	var l mat.TriDense
	chol.LTo(&l)

	z := mat.NewVecDense(d, nil)
	for i := 0; i < d; i++ {
		z.SetVec(i, rng.NormFloat64())
	}
	var lz mat.VecDense
	lz.MulVec(&l, z)

	x := make([]float64, d)
	for i := 0; i < d; i++ {
		x[i] = mean[i] + lz.AtVec(i)
	}
	return x, nil
}

// DiagGaussianLogDensity computes the log-density of an axis-aligned
// Gaussian (diagonal or spherical covariance, represented as a per-dimension
// variance slice) without going through Cholesky, since the closed form is
// already O(D) and numerically trivial.
//
// Complexity: O(D).
func DiagGaussianLogDensity(mean, x, variance []float64) (float64, error) {
	d := len(mean)
	if len(x) != d || len(variance) != d {
		return 0, fmt.Errorf("DiagGaussianLogDensity: %w", errs.ErrShapeMismatch)
	}
	var logDensity float64
	for i := 0; i < d; i++ {
		v := variance[i]
		diff := x[i] - mean[i]
		logDensity += -0.5 * (math.Log(2*math.Pi*v) + diff*diff/v)
	}
	return logDensity, nil
}
