// Package paramguard validates and projects probability matrices to the
// simplex, and validates covariance matrices for positive-definiteness. It
// is the last step of every M-step before a re-estimated Model is accepted.
package paramguard
