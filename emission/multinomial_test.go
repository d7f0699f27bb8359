package emission_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gohmm/emission"
)

func TestMultinomial_MStepRecoversEvenSplit(t *testing.T) {
	m, err := emission.NewMultinomial(1, 2, [][]float64{{0.9, 0.1}}, 1.0, 4)
	require.NoError(t, err)

	stats := m.NewStats()
	x := [][]float64{{2, 2}, {2, 2}}
	gamma := [][]float64{{1}, {1}}
	require.NoError(t, m.Accumulate(stats, x, gamma))
	require.NoError(t, m.MStep(stats, "e"))
	require.NoError(t, m.Validate())

	b, err := m.LogLikelihood([][]float64{{2, 2}})
	require.NoError(t, err)
	assert.Greater(t, b[0][0], -100.0)
}

func TestMultinomial_SampleFromStateRespectsNTrials(t *testing.T) {
	m, err := emission.NewMultinomial(1, 2, [][]float64{{0.9, 0.1}}, 1.0, 7)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	sample, err := m.SampleFromState(0, rng)
	require.NoError(t, err)
	require.Len(t, sample, 2)

	var total float64
	for _, v := range sample {
		total += v
	}
	assert.Equal(t, 7.0, total)
}
