package paramguard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gohmm/errs"
	"github.com/katalvlaran/gohmm/paramguard"
)

func TestNormalizeRow_Stochastic(t *testing.T) {
	out := paramguard.NormalizeRow([]float64{0.2, 0.3, 0.5}, 1.0)
	var sum float64
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestNormalizeRow_ZeroFallsBackUniform(t *testing.T) {
	out := paramguard.NormalizeRow([]float64{0, 0, 0}, 1.0)
	for _, v := range out {
		assert.InDelta(t, 1.0/3.0, v, 1e-12)
	}
}

func TestNormalizeRow_NegativeExcessClamped(t *testing.T) {
	out := paramguard.NormalizeRow([]float64{-5, 10}, 1.0)
	assert.Equal(t, 0.0, out[0])
	assert.InDelta(t, 1.0, out[1], 1e-12)
}

func TestValidateStochastic_OK(t *testing.T) {
	m := [][]float64{{0.5, 0.5}, {0.1, 0.9}}
	assert.NoError(t, paramguard.ValidateStochastic(m, paramguard.DefaultEpsilon))
}

func TestValidateStochastic_RowDoesNotSumToOne(t *testing.T) {
	m := [][]float64{{0.5, 0.6}}
	err := paramguard.ValidateStochastic(m, paramguard.DefaultEpsilon)
	assert.ErrorIs(t, err, errs.ErrNotStochastic)
}

func TestValidateStochastic_NegativeEntry(t *testing.T) {
	m := [][]float64{{-0.1, 1.1}}
	err := paramguard.ValidateStochastic(m, paramguard.DefaultEpsilon)
	assert.ErrorIs(t, err, errs.ErrNotStochastic)
}

func TestValidateCovarianceDense_Identity(t *testing.T) {
	cov := [][]float64{{1, 0}, {0, 1}}
	require.NoError(t, paramguard.ValidateCovarianceDense(cov, 1e-9))
}

func TestValidateCovarianceDense_Asymmetric(t *testing.T) {
	cov := [][]float64{{1, 0.5}, {0.2, 1}}
	err := paramguard.ValidateCovarianceDense(cov, 1e-9)
	assert.ErrorIs(t, err, errs.ErrNonPositiveDefinite)
}

func TestValidateCovarianceDense_NotPositiveDefinite(t *testing.T) {
	cov := [][]float64{{1, 2}, {2, 1}}
	err := paramguard.ValidateCovarianceDense(cov, 1e-9)
	assert.ErrorIs(t, err, errs.ErrNonPositiveDefinite)
}

func TestValidateCovarianceDiag_OK(t *testing.T) {
	assert.NoError(t, paramguard.ValidateCovarianceDiag([]float64{1.0, 2.5, 0.1}))
}

func TestValidateCovarianceDiag_NonPositive(t *testing.T) {
	err := paramguard.ValidateCovarianceDiag([]float64{1.0, 0, 0.1})
	assert.ErrorIs(t, err, errs.ErrNonPositiveDefinite)
}
