package lattice

import "errors"

// ErrEmptyDimensions indicates a lattice was asked to operate over zero states.
var ErrEmptyDimensions = errors.New("lattice: number of states must be > 0")

// ErrShapeMismatch indicates start/trans/frame-probability dimensions disagree.
var ErrShapeMismatch = errors.New("lattice: shape mismatch")
