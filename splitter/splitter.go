package splitter

import (
	"fmt"

	"github.com/katalvlaran/gohmm/errs"
)

// Split partitions X (a flat row-major observation buffer of length len(X))
// into independent subsequences according to lengths. If lengths is nil or
// empty, the whole of X is returned as a single subsequence. Otherwise, the
// sum of lengths must equal len(X); a mismatch returns errs.ErrLengthMismatch.
//
// Every entry in lengths must be strictly positive.
//
// Complexity: O(len(X)) to build the slice headers (no copying: each
// subsequence aliases the corresponding contiguous span of X).
func Split(X [][]float64, lengths []int) ([][][]float64, error) {
	if len(lengths) == 0 {
		return [][][]float64{X}, nil
	}

	var total int
	for i, l := range lengths {
		if l <= 0 {
			return nil, fmt.Errorf("Split: lengths[%d]=%d must be > 0: %w", i, l, errs.ErrLengthMismatch)
		}
		total += l
	}
	if total != len(X) {
		return nil, fmt.Errorf("Split: lengths sum to %d, want %d: %w", total, len(X), errs.ErrLengthMismatch)
	}

	out := make([][][]float64, len(lengths))
	offset := 0
	for i, l := range lengths {
		out[i] = X[offset : offset+l]
		offset += l
	}
	return out, nil
}
