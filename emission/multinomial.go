package emission

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/gohmm/errs"
	"github.com/katalvlaran/gohmm/paramguard"
)

// multinomialLetters is the recognised params/init_params alphabet for
// Multinomial: "e" selects emission_prob.
const multinomialLetters = "e"

// defaultNTrials is the trial count SampleFromState uses when the caller
// did not supply one, matching a single one-hot draw.
const defaultNTrials = 1

// Multinomial implements Family for vector count observations drawn with a
// fixed number of trials per sample.
type Multinomial struct {
	n, k         int
	emissionProb [][]float64 // N x K, row-stochastic
	prior        float64
	nTrials      int // trials per sample, used only by SampleFromState
}

// NewMultinomial constructs a Multinomial emission family with n states and
// a K-category alphabet. nTrials is the number of i.i.d. categorical trials
// SampleFromState draws into a single count vector; nTrials <= 0 falls back
// to defaultNTrials (a one-hot draw). LogLikelihood/Accumulate/MStep read
// the trial count directly off each observation row, so nTrials only
// configures generative sampling.
func NewMultinomial(n, k int, emissionProb [][]float64, prior float64, nTrials int) (*Multinomial, error) {
	if n <= 0 || k <= 0 {
		return nil, fmt.Errorf("NewMultinomial: %w", errs.ErrShapeMismatch)
	}
	if prior <= 0 {
		prior = DefaultPrior
	}
	if nTrials <= 0 {
		nTrials = defaultNTrials
	}
	m := &Multinomial{n: n, k: k, prior: prior, nTrials: nTrials}
	if emissionProb != nil {
		if len(emissionProb) != n {
			return nil, fmt.Errorf("NewMultinomial: %w", errs.ErrShapeMismatch)
		}
		m.emissionProb = make([][]float64, n)
		for i, row := range emissionProb {
			if len(row) != k {
				return nil, fmt.Errorf("NewMultinomial: %w", errs.ErrShapeMismatch)
			}
			m.emissionProb[i] = append([]float64(nil), row...)
		}
	}
	return m, nil
}

// NComponents implements Family.
func (m *Multinomial) NComponents() int { return m.n }

// Validate implements Family.
func (m *Multinomial) Validate() error {
	if m.emissionProb == nil {
		return fmt.Errorf("Multinomial.Validate: %w", errs.ErrNotFitted)
	}
	return paramguard.ValidateStochastic(m.emissionProb, paramguard.DefaultEpsilon)
}

// Initialize implements Family.
func (m *Multinomial) Initialize(x [][]float64, initMask string, rng *rand.Rand) error {
	if err := validateMask(initMask, multinomialLetters); err != nil {
		return fmt.Errorf("Multinomial.Initialize: %w", err)
	}
	if !containsLetter(initMask, 'e') || m.emissionProb != nil {
		return nil
	}
	m.emissionProb = make([][]float64, m.n)
	for i := range m.emissionProb {
		row := make([]float64, m.k)
		var sum float64
		for j := range row {
			row[j] = rng.Float64() + 1e-3
			sum += row[j]
		}
		for j := range row {
			row[j] /= sum
		}
		m.emissionProb[i] = row
	}
	return nil
}

// LogLikelihood implements Family.
func (m *Multinomial) LogLikelihood(x [][]float64) ([][]float64, error) {
	b := make([][]float64, len(x))
	for t, row := range x {
		if len(row) != m.k {
			return nil, fmt.Errorf("Multinomial.LogLikelihood: %w", errs.ErrShapeMismatch)
		}
		var nTrials, logDenom float64
		for _, v := range row {
			nTrials += v
			lg, _ := math.Lgamma(v + 1)
			logDenom += lg
		}
		lgN, _ := math.Lgamma(nTrials + 1)
		b[t] = make([]float64, m.n)
		for j := 0; j < m.n; j++ {
			var logLik float64
			for k, v := range row {
				if v == 0 {
					continue
				}
				logLik += v * math.Log(m.emissionProb[j][k])
			}
			b[t][j] = lgN - logDenom + logLik
		}
	}
	return b, nil
}

// multinomialStats is the Multinomial sufficient-statistics accumulator.
type multinomialStats struct {
	obs [][]float64 // N x K
}

// NewStats implements Family.
func (m *Multinomial) NewStats() Stats {
	obs := make([][]float64, m.n)
	for i := range obs {
		obs[i] = make([]float64, m.k)
	}
	return &multinomialStats{obs: obs}
}

// Accumulate implements Family.
func (m *Multinomial) Accumulate(stats Stats, x [][]float64, gamma [][]float64) error {
	s, ok := stats.(*multinomialStats)
	if !ok {
		return fmt.Errorf("Multinomial.Accumulate: %w", errs.ErrShapeMismatch)
	}
	for t, row := range x {
		for j := 0; j < m.n; j++ {
			w := gamma[t][j]
			for k, v := range row {
				s.obs[j][k] += w * v
			}
		}
	}
	return nil
}

// MStep implements Family.
func (m *Multinomial) MStep(stats Stats, trainMask string) error {
	if err := validateMask(trainMask, multinomialLetters); err != nil {
		return fmt.Errorf("Multinomial.MStep: %w", err)
	}
	if !containsLetter(trainMask, 'e') {
		return nil
	}
	s, ok := stats.(*multinomialStats)
	if !ok {
		return fmt.Errorf("Multinomial.MStep: %w", errs.ErrShapeMismatch)
	}
	for j := 0; j < m.n; j++ {
		m.emissionProb[j] = paramguard.NormalizeRow(s.obs[j], DefaultPrior)
	}
	return nil
}

// SampleFromState implements Family. It draws n_trials i.i.d. categorical
// picks from emission_prob[j] and returns their K-length count vector.
func (m *Multinomial) SampleFromState(j int, rng *rand.Rand) ([]float64, error) {
	if j < 0 || j >= m.n {
		return nil, fmt.Errorf("Multinomial.SampleFromState: %w", errs.ErrShapeMismatch)
	}
	out := make([]float64, m.k)
	for trial := 0; trial < m.nTrials; trial++ {
		u := rng.Float64()
		var cum float64
		k := m.k - 1
		for cand := 0; cand < m.k; cand++ {
			cum += m.emissionProb[j][cand]
			if u <= cum {
				k = cand
				break
			}
		}
		out[k]++
	}
	return out, nil
}

// NFreeScalars implements Family.
func (m *Multinomial) NFreeScalars(trainMask string) int {
	if !containsLetter(trainMask, 'e') {
		return 0
	}
	return m.n * (m.k - 1)
}
