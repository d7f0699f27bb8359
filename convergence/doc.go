// Package convergence implements the ConvergenceMonitor: a bounded
// two-entry history of per-iteration EM log-probabilities, a non-monotone
// increase warning, and the termination decision (iteration budget
// exhausted, or consecutive log-probability delta below tolerance).
package convergence
