// Package numkernel provides the numerically stable log-space primitives
// shared by every other package in this module: logsumexp, log-space
// matrix-vector multiplication, and Cholesky-based multivariate Gaussian
// log-density. It also exposes Dense, a flat row-major float64 matrix used
// wherever a component needs a genuine two-dimensional numeric buffer
// (as opposed to the plain [][]float64 row slices used for the hot-path
// forward/backward lattices).
//
// Dense is adapted from lvlath's matrix.Dense: same flat-storage layout,
// same bounds-checked At/Set, same Clone-for-immutability discipline — but
// trimmed of every graph-specific concern (adjacency/incidence conversion,
// edge ingestion) since nothing here has a graph.
package numkernel
