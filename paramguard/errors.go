package paramguard

import "errors"

// ErrEigenFailed indicates the Jacobi eigensolver did not converge within
// the configured sweep budget.
var ErrEigenFailed = errors.New("paramguard: eigen decomposition did not converge")

// ErrAsymmetric indicates a covariance matrix failed the symmetry check.
var ErrAsymmetric = errors.New("paramguard: matrix is not symmetric within eps")
