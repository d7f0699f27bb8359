package lattice

import (
	"fmt"
	"math"
)

// ForwardScaling runs the probability-space forward recurrence with
// per-time normalisation, the alternative to the log-space Forward. It
// returns the normalised forward variables, the per-step scale factors c_t
// (the row sum before normalisation, i.e. p(x_t | x_0..x_t-1)), and the
// total log-probability logProb = sum(log(c_t)).
//
// startProb and trans are plain (non-log) probabilities; frameProb is the
// plain-space emission likelihood B[t][j] = p(x_t | state=j).
//
// Complexity: O(T*N^2).
func ForwardScaling(startProb []float64, trans [][]float64, frameProb [][]float64) (fwd [][]float64, scale []float64, logProb float64, err error) {
	n := len(startProb)
	if n == 0 {
		return nil, nil, 0, fmt.Errorf("ForwardScaling: %w", ErrEmptyDimensions)
	}
	if err := validateSquare(trans, n); err != nil {
		return nil, nil, 0, fmt.Errorf("ForwardScaling: %w", err)
	}
	t := len(frameProb)
	if t == 0 {
		return [][]float64{}, []float64{}, 0, nil
	}
	if err := validateFrames(frameProb, n); err != nil {
		return nil, nil, 0, fmt.Errorf("ForwardScaling: %w", err)
	}

	fwd = make([][]float64, t)
	scale = make([]float64, t)

	fwd[0] = make([]float64, n)
	for j := 0; j < n; j++ {
		fwd[0][j] = startProb[j] * frameProb[0][j]
		scale[0] += fwd[0][j]
	}
	normalizeRow(fwd[0], scale[0])

	for step := 1; step < t; step++ {
		fwd[step] = make([]float64, n)
		prev := fwd[step-1]
		for j := 0; j < n; j++ {
			var acc float64
			for i := 0; i < n; i++ {
				acc += prev[i] * trans[i][j]
			}
			fwd[step][j] = acc * frameProb[step][j]
			scale[step] += fwd[step][j]
		}
		normalizeRow(fwd[step], scale[step])
	}

	for _, c := range scale {
		if c > 0 {
			logProb += math.Log(c)
		} else {
			logProb = math.Inf(-1)
			break
		}
	}

	return fwd, scale, logProb, nil
}

func normalizeRow(row []float64, total float64) {
	if total <= 0 {
		return
	}
	for i := range row {
		row[i] /= total
	}
}

// BackwardScaling runs the probability-space backward recurrence, reusing
// the scale factors produced by ForwardScaling so the result stays on the
// same normalised footing for posterior/xi computation.
//
// Complexity: O(T*N^2).
func BackwardScaling(trans [][]float64, frameProb [][]float64, scale []float64) (bwd [][]float64, err error) {
	n := len(trans)
	if n == 0 {
		return nil, fmt.Errorf("BackwardScaling: %w", ErrEmptyDimensions)
	}
	if err := validateSquare(trans, n); err != nil {
		return nil, fmt.Errorf("BackwardScaling: %w", err)
	}
	t := len(frameProb)
	if t == 0 {
		return [][]float64{}, nil
	}
	if len(scale) != t {
		return nil, fmt.Errorf("BackwardScaling: %w", ErrShapeMismatch)
	}

	bwd = make([][]float64, t)
	bwd[t-1] = make([]float64, n)
	for i := 0; i < n; i++ {
		if scale[t-1] > 0 {
			bwd[t-1][i] = 1.0 / scale[t-1]
		}
	}

	for step := t - 2; step >= 0; step-- {
		bwd[step] = make([]float64, n)
		next := bwd[step+1]
		nextFrame := frameProb[step+1]
		for i := 0; i < n; i++ {
			var acc float64
			for j := 0; j < n; j++ {
				acc += trans[i][j] * nextFrame[j] * next[j]
			}
			if scale[step] > 0 {
				bwd[step][i] = acc / scale[step]
			}
		}
	}

	return bwd, nil
}
