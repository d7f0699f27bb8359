// Package gohmm is a Hidden Markov Model toolkit: log-space
// forward/backward, Viterbi and posterior (MAP) decoding, and Baum-Welch
// (EM) parameter re-estimation over a pluggable emission.Family.
//
// 🚀 What is gohmm?
//
//	A numerically-careful, dependency-lean library that brings together:
//
//	  • Lattice core: forward/backward/Viterbi in log-space, plus a
//	    probability-space scaling implementation for cross-checking
//	  • Pluggable emissions: Categorical, Gaussian (spherical/diag/full/
//	    tied covariance), Multinomial, Poisson and Gaussian Mixture (GMM)
//	  • A Baum-Welch estimator with a bounded worker pool for the E-step,
//	    ParamGuard validation, and a convergence monitor
//
// ✨ Why choose gohmm?
//
//   - Numerically careful — every recurrence lives in log-space; -Inf
//     stands for log(0), never NaN
//   - Extensible          — emission.Family is a small interface; new
//     observation models plug in without touching the lattice or
//     estimator packages
//   - Reproducible         — the E-step parallelises per-subsequence
//     lattice work but folds results into the shared accumulator in a
//     fixed order, so repeated fits of the same data bitwise agree
//
// Under the hood, everything is organized under task-shaped subpackages:
//
//	numkernel/   — log-space arithmetic, dense/matrix helpers, Cholesky log-density
//	lattice/     — forward, backward, Viterbi, posteriors, xi-sums, scaling variant
//	emission/    — the Family interface and its five concrete emission models
//	paramguard/  — stochasticity and covariance positive-definiteness checks
//	convergence/ — the Baum-Welch convergence monitor
//	splitter/    — splits a flat observation matrix into independent subsequences
//	estimator/   — Model: NewModel, Fit, Score, ScoreSamples, Decode, Sample, AIC/BIC
//	errs/        — sentinel errors shared across every package above
//
// Quick shape:
//
//	fam, _ := emission.NewGaussian(2, 1, emission.Diag, emission.GaussianPriors{})
//	m, _ := estimator.NewModel(fam, estimator.WithNIter(100))
//	_ = m.Fit(observations, nil)
//	logProb, path, _ := m.Decode(observations, nil)
//
// Dive into SPEC_FULL.md and DESIGN.md for the full operation list and the
// reasoning behind each package's design.
//
//	go get github.com/katalvlaran/gohmm
package gohmm
