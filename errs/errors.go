// SPDX-License-Identifier: MIT
//
// Package errs centralises the sentinel error values shared across the
// numkernel, lattice, emission, estimator, splitter and paramguard packages.
//
// These kinds are spelled out by the HMM core's error-handling design: they
// are deliberately error *values*, not distinct Go types, so every caller
// branches with errors.Is against one of the sentinels below rather than a
// type switch. Packages wrap with fmt.Errorf("Func: %w", errs.ErrX) at their
// own boundary; they never re-wrap an already-wrapped sentinel.
package errs

import "errors"

var (
	// ErrShapeMismatch indicates a parameter array's dimensions disagree
	// with the model's N (states), D (observation dimension), K (alphabet
	// size) or M (mixture count).
	ErrShapeMismatch = errors.New("hmm: shape mismatch")

	// ErrNotStochastic indicates start_prob or a row of trans_mat (or any
	// other row-stochastic matrix) does not sum to 1, or has negative entries.
	ErrNotStochastic = errors.New("hmm: not stochastic")

	// ErrNonPositiveDefinite indicates a covariance matrix failed a Cholesky
	// factorisation even after one min_covar flooring retry.
	ErrNonPositiveDefinite = errors.New("hmm: covariance is not positive-definite")

	// ErrLengthMismatch indicates a lengths partition does not sum to the
	// total number of observation rows.
	ErrLengthMismatch = errors.New("hmm: lengths do not sum to observation count")

	// ErrNotFitted indicates an inference operation was called before Fit
	// initialised the required parameters.
	ErrNotFitted = errors.New("hmm: model is not fitted")

	// ErrIllConditioned indicates the forward recurrence returned -Inf total
	// log-probability: the model assigns zero mass to the observations.
	ErrIllConditioned = errors.New("hmm: ill-conditioned (zero likelihood)")

	// ErrInvalidOption indicates an unknown algorithm, covariance_type,
	// implementation, or params/init_params letter.
	ErrInvalidOption = errors.New("hmm: invalid option")
)
