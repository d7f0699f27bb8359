// Package emission implements the pluggable emission-family abstraction for
// the HMM core: Categorical, Gaussian (spherical/diag/full/tied covariance),
// Multinomial, Poisson, and Gaussian Mixture. Every family satisfies the
// Family capability interface so the estimator package can drive E-step and
// M-step logic without knowing which concrete distribution it is training.
package emission
