// Package estimator implements the EM (Baum-Welch) training loop and
// inference operations for a discrete-time Hidden Markov Model, driving the
// lattice, emission, convergence, splitter and paramguard packages without
// knowing which concrete emission family it was configured with.
package estimator
