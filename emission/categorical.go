package emission

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/gohmm/errs"
	"github.com/katalvlaran/gohmm/paramguard"
)

// categoricalLetters is the recognised params/init_params alphabet for
// Categorical: "e" selects emission_prob.
const categoricalLetters = "e"

// Categorical implements Family for integer-symbol observations in [0, K).
type Categorical struct {
	n, k          int
	emissionProb  [][]float64 // N x K, row-stochastic
	emissionPrior float64     // Dirichlet pseudocount alpha, see DefaultPrior
}

// NewCategorical constructs a Categorical emission family with n states and
// a K-symbol alphabet. emissionProb may be nil, in which case Initialize
// must be called (via Fit's init_params) before use.
func NewCategorical(n, k int, emissionProb [][]float64, prior float64) (*Categorical, error) {
	if n <= 0 || k <= 0 {
		return nil, fmt.Errorf("NewCategorical: %w", errs.ErrShapeMismatch)
	}
	if prior <= 0 {
		prior = DefaultPrior
	}
	c := &Categorical{n: n, k: k, emissionPrior: prior}
	if emissionProb != nil {
		if len(emissionProb) != n {
			return nil, fmt.Errorf("NewCategorical: %w", errs.ErrShapeMismatch)
		}
		c.emissionProb = make([][]float64, n)
		for i, row := range emissionProb {
			if len(row) != k {
				return nil, fmt.Errorf("NewCategorical: %w", errs.ErrShapeMismatch)
			}
			c.emissionProb[i] = append([]float64(nil), row...)
		}
	}
	return c, nil
}

// NComponents implements Family.
func (c *Categorical) NComponents() int { return c.n }

// Validate implements Family.
func (c *Categorical) Validate() error {
	if c.emissionProb == nil {
		return fmt.Errorf("Categorical.Validate: %w", errs.ErrNotFitted)
	}
	return paramguard.ValidateStochastic(c.emissionProb, paramguard.DefaultEpsilon)
}

// Initialize implements Family.
func (c *Categorical) Initialize(x [][]float64, initMask string, rng *rand.Rand) error {
	if err := validateMask(initMask, categoricalLetters); err != nil {
		return fmt.Errorf("Categorical.Initialize: %w", err)
	}
	if !containsLetter(initMask, 'e') || c.emissionProb != nil {
		return nil
	}
	c.emissionProb = make([][]float64, c.n)
	for i := range c.emissionProb {
		row := make([]float64, c.k)
		var sum float64
		for j := range row {
			row[j] = rng.Float64() + 1e-3
			sum += row[j]
		}
		for j := range row {
			row[j] /= sum
		}
		c.emissionProb[i] = row
	}
	return nil
}

// LogLikelihood implements Family.
func (c *Categorical) LogLikelihood(x [][]float64) ([][]float64, error) {
	b := make([][]float64, len(x))
	for t, row := range x {
		if len(row) != 1 {
			return nil, fmt.Errorf("Categorical.LogLikelihood: %w", errs.ErrShapeMismatch)
		}
		symbol := int(row[0])
		if symbol < 0 || symbol >= c.k {
			return nil, fmt.Errorf("Categorical.LogLikelihood: symbol %d out of [0,%d): %w", symbol, c.k, errs.ErrShapeMismatch)
		}
		b[t] = make([]float64, c.n)
		for j := 0; j < c.n; j++ {
			b[t][j] = math.Log(c.emissionProb[j][symbol])
		}
	}
	return b, nil
}

// categoricalStats is the Categorical sufficient-statistics accumulator.
type categoricalStats struct {
	obs [][]float64 // N x K
}

// NewStats implements Family.
func (c *Categorical) NewStats() Stats {
	obs := make([][]float64, c.n)
	for i := range obs {
		obs[i] = make([]float64, c.k)
	}
	return &categoricalStats{obs: obs}
}

// Accumulate implements Family.
func (c *Categorical) Accumulate(stats Stats, x [][]float64, gamma [][]float64) error {
	s, ok := stats.(*categoricalStats)
	if !ok {
		return fmt.Errorf("Categorical.Accumulate: %w", errs.ErrShapeMismatch)
	}
	for t, row := range x {
		symbol := int(row[0])
		for j := 0; j < c.n; j++ {
			s.obs[j][symbol] += gamma[t][j]
		}
	}
	return nil
}

// MStep implements Family.
func (c *Categorical) MStep(stats Stats, trainMask string) error {
	if err := validateMask(trainMask, categoricalLetters); err != nil {
		return fmt.Errorf("Categorical.MStep: %w", err)
	}
	if !containsLetter(trainMask, 'e') {
		return nil
	}
	s, ok := stats.(*categoricalStats)
	if !ok {
		return fmt.Errorf("Categorical.MStep: %w", errs.ErrShapeMismatch)
	}
	for j := 0; j < c.n; j++ {
		c.emissionProb[j] = paramguard.NormalizeRow(s.obs[j], c.emissionPrior)
	}
	return nil
}

// SampleFromState implements Family.
func (c *Categorical) SampleFromState(j int, rng *rand.Rand) ([]float64, error) {
	if j < 0 || j >= c.n {
		return nil, fmt.Errorf("Categorical.SampleFromState: %w", errs.ErrShapeMismatch)
	}
	u := rng.Float64()
	var cum float64
	for k := 0; k < c.k; k++ {
		cum += c.emissionProb[j][k]
		if u <= cum {
			return []float64{float64(k)}, nil
		}
	}
	return []float64{float64(c.k - 1)}, nil
}

// NFreeScalars implements Family.
func (c *Categorical) NFreeScalars(trainMask string) int {
	if !containsLetter(trainMask, 'e') {
		return 0
	}
	return c.n * (c.k - 1)
}
