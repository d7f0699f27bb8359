package convergence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gohmm/convergence"
)

func TestMonitor_ConvergesOnTolerance(t *testing.T) {
	m := convergence.NewMonitor(1e-4, 100, false)
	m.Report(-100.0)
	assert.False(t, m.Converged())
	m.Report(-99.99999)
	assert.True(t, m.Converged())
}

func TestMonitor_ConvergesOnIterationBudget(t *testing.T) {
	m := convergence.NewMonitor(1e-12, 2, false)
	m.Report(-50.0)
	assert.False(t, m.Converged())
	m.Report(-40.0)
	assert.True(t, m.Converged())
}

func TestMonitor_NonMonotoneWarning(t *testing.T) {
	m := convergence.NewMonitor(1e-6, 100, false)
	m.Report(-10.0)
	warned := m.Report(-10.5)
	assert.True(t, warned, "a meaningful regression must warn")
}

func TestMonitor_WarningsAccumulateNonMonotoneAndCustom(t *testing.T) {
	m := convergence.NewMonitor(1e-6, 100, false)
	m.Report(-10.0)
	m.Report(-10.5)
	m.Warn("covariance floored to min_covar")

	warnings := m.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Message, "regressed")
	assert.Equal(t, "covariance floored to min_covar", warnings[1].Message)
}

func TestMonitor_HistoryCappedAtTwo(t *testing.T) {
	m := convergence.NewMonitor(1e-6, 100, false)
	m.Report(-10.0)
	m.Report(-9.0)
	m.Report(-8.0)
	assert.Len(t, m.History(), 2)
	assert.Equal(t, []float64{-9.0, -8.0}, m.History())
}
