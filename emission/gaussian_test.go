package emission_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gohmm/emission"
)

func TestGaussianDiag_LogLikelihoodFinite(t *testing.T) {
	g, err := emission.NewGaussian(2, 1, emission.Diag, emission.GaussianPriors{})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	require.NoError(t, g.Initialize([][]float64{{0}, {3}}, "mc", rng))

	b, err := g.LogLikelihood([][]float64{{0}, {3}})
	require.NoError(t, err)
	require.Len(t, b, 2)
	for _, row := range b {
		for _, v := range row {
			assert.False(t, math.IsNaN(v))
		}
	}
}

func TestGaussianDiag_MStepRecoversMean(t *testing.T) {
	g, err := emission.NewGaussian(1, 1, emission.Diag, emission.GaussianPriors{})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	require.NoError(t, g.Initialize([][]float64{{5.0}}, "mc", rng))

	stats := g.NewStats()
	x := [][]float64{{4.0}, {6.0}, {4.0}, {6.0}}
	gamma := [][]float64{{1}, {1}, {1}, {1}}
	require.NoError(t, g.Accumulate(stats, x, gamma))
	require.NoError(t, g.MStep(stats, "mc"))
	require.NoError(t, g.Validate())

	b, err := g.LogLikelihood([][]float64{{5.0}})
	require.NoError(t, err)
	assert.Greater(t, b[0][0], -10.0)
}

func TestGaussianFull_ValidateAfterFit(t *testing.T) {
	g, err := emission.NewGaussian(1, 2, emission.Full, emission.GaussianPriors{})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	require.NoError(t, g.Initialize([][]float64{{0, 0}}, "mc", rng))

	stats := g.NewStats()
	x := [][]float64{{0, 0}, {1, 1}, {-1, -1}, {0.5, -0.5}}
	gamma := [][]float64{{1}, {1}, {1}, {1}}
	require.NoError(t, g.Accumulate(stats, x, gamma))
	require.NoError(t, g.MStep(stats, "mc"))
	require.NoError(t, g.Validate())
}

func TestGaussianFull_SampleFromStateCorrelated(t *testing.T) {
	g, err := emission.NewGaussian(1, 2, emission.Full, emission.GaussianPriors{})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	require.NoError(t, g.Initialize([][]float64{{0, 0}}, "mc", rng))

	stats := g.NewStats()
	x := [][]float64{{0, 0}, {1, 1}, {-1, -1}, {2, 2}, {-2, -2}}
	gamma := [][]float64{{1}, {1}, {1}, {1}, {1}}
	require.NoError(t, g.Accumulate(stats, x, gamma))
	require.NoError(t, g.MStep(stats, "mc"))

	// The fitted covariance is strongly correlated (x1 == x2 in every
	// training row); draws should reflect that rather than sampling each
	// coordinate independently.
	var sumProd, sumSq float64
	const n = 200
	for i := 0; i < n; i++ {
		sample, err := g.SampleFromState(0, rng)
		require.NoError(t, err)
		require.Len(t, sample, 2)
		assert.False(t, math.IsNaN(sample[0]))
		assert.False(t, math.IsNaN(sample[1]))
		sumProd += sample[0] * sample[1]
		sumSq += sample[0] * sample[0]
	}
	assert.Greater(t, sumProd, 0.5*sumSq)
}

func TestGaussian_NFreeScalars(t *testing.T) {
	g, err := emission.NewGaussian(3, 2, emission.Diag, emission.GaussianPriors{})
	require.NoError(t, err)
	assert.Equal(t, 3*2+3*2, g.NFreeScalars("mc"))
	assert.Equal(t, 0, g.NFreeScalars(""))
}
