// Package lattice implements the forward, backward, posterior,
// transition-posterior (xi-sum) and Viterbi recurrences over a time×state
// lattice of log-frame-probabilities, plus a scaling-based alternative
// implementation of forward/backward that must agree with the log-space
// one within 1e-8 on well-conditioned inputs.
//
// All log-space recurrences follow the sentinel convention: log 0 is
// represented as -Inf, never NaN, and (-Inf) + x = -Inf.
package lattice
