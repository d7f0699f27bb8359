package splitter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gohmm/errs"
	"github.com/katalvlaran/gohmm/splitter"
)

func rows(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = []float64{float64(i)}
	}
	return out
}

func TestSplit_NoLengths(t *testing.T) {
	X := rows(10)
	subs, err := splitter.Split(X, nil)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, X, subs[0])
}

func TestSplit_Partition(t *testing.T) {
	X := rows(10)
	subs, err := splitter.Split(X, []int{3, 4, 3})
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Len(t, subs[0], 3)
	assert.Len(t, subs[1], 4)
	assert.Len(t, subs[2], 3)
	assert.Equal(t, X[0], subs[0][0])
	assert.Equal(t, X[3], subs[1][0])
	assert.Equal(t, X[7], subs[2][0])
}

func TestSplit_LengthMismatch(t *testing.T) {
	X := rows(10)
	_, err := splitter.Split(X, []int{3, 4})
	assert.ErrorIs(t, err, errs.ErrLengthMismatch)
}

func TestSplit_NonPositiveLength(t *testing.T) {
	X := rows(5)
	_, err := splitter.Split(X, []int{5, 0})
	assert.ErrorIs(t, err, errs.ErrLengthMismatch)
}
