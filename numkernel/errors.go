package numkernel

import "errors"

// ErrInvalidDimensions indicates that requested Dense dimensions are non-positive.
var ErrInvalidDimensions = errors.New("numkernel: dimensions must be > 0")

// ErrIndexOutOfBounds indicates a row or column index outside a Dense's bounds.
var ErrIndexOutOfBounds = errors.New("numkernel: index out of bounds")
