package emission

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/gohmm/errs"
)

// poissonLetters is the recognised params/init_params alphabet for
// Poisson: "l" selects lambdas.
const poissonLetters = "l"

// PoissonPriors holds the Gamma(alpha, beta) conjugate prior on each
// lambda. Zero values reproduce plain maximum-likelihood re-estimation.
type PoissonPriors struct {
	Alpha float64
	Beta  float64
}

// Poisson implements Family for D-dimensional non-negative integer count
// observations, each dimension independently Poisson-distributed per state.
type Poisson struct {
	n, d    int
	lambdas [][]float64 // N x D, strictly positive
	priors  PoissonPriors
}

// NewPoisson constructs a Poisson emission family with n states and d
// independent count dimensions per state.
func NewPoisson(n, d int, lambdas [][]float64, priors PoissonPriors) (*Poisson, error) {
	if n <= 0 || d <= 0 {
		return nil, fmt.Errorf("NewPoisson: %w", errs.ErrShapeMismatch)
	}
	p := &Poisson{n: n, d: d, priors: priors}
	if lambdas != nil {
		if len(lambdas) != n {
			return nil, fmt.Errorf("NewPoisson: %w", errs.ErrShapeMismatch)
		}
		p.lambdas = make([][]float64, n)
		for i, row := range lambdas {
			if len(row) != d {
				return nil, fmt.Errorf("NewPoisson: %w", errs.ErrShapeMismatch)
			}
			p.lambdas[i] = append([]float64(nil), row...)
		}
	}
	return p, nil
}

// NComponents implements Family.
func (p *Poisson) NComponents() int { return p.n }

// Validate implements Family.
func (p *Poisson) Validate() error {
	if p.lambdas == nil {
		return fmt.Errorf("Poisson.Validate: %w", errs.ErrNotFitted)
	}
	for j, row := range p.lambdas {
		for i, v := range row {
			if v <= 0 {
				return fmt.Errorf("Poisson.Validate: lambda[%d][%d]=%v: %w", j, i, v, errs.ErrNonPositiveDefinite)
			}
		}
	}
	return nil
}

// Initialize implements Family.
func (p *Poisson) Initialize(x [][]float64, initMask string, rng *rand.Rand) error {
	if err := validateMask(initMask, poissonLetters); err != nil {
		return fmt.Errorf("Poisson.Initialize: %w", err)
	}
	if !containsLetter(initMask, 'l') || p.lambdas != nil {
		return nil
	}
	p.lambdas = make([][]float64, p.n)
	for j := range p.lambdas {
		row := x[rng.Intn(len(x))]
		out := make([]float64, p.d)
		for i, v := range row {
			out[i] = math.Max(v, 1e-3)
		}
		p.lambdas[j] = out
	}
	return nil
}

// LogLikelihood implements Family.
func (p *Poisson) LogLikelihood(x [][]float64) ([][]float64, error) {
	b := make([][]float64, len(x))
	for t, row := range x {
		if len(row) != p.d {
			return nil, fmt.Errorf("Poisson.LogLikelihood: %w", errs.ErrShapeMismatch)
		}
		b[t] = make([]float64, p.n)
		for j := 0; j < p.n; j++ {
			var logLik float64
			for i, v := range row {
				lam := p.lambdas[j][i]
				lg, _ := math.Lgamma(v + 1)
				logLik += -lam + v*math.Log(lam) - lg
			}
			b[t][j] = logLik
		}
	}
	return b, nil
}

// poissonStats is the Poisson sufficient-statistics accumulator.
type poissonStats struct {
	post []float64   // N
	obs  [][]float64 // N x D
}


// NewStats implements Family.
func (p *Poisson) NewStats() Stats {
	obs := make([][]float64, p.n)
	for j := range obs {
		obs[j] = make([]float64, p.d)
	}
	return &poissonStats{post: make([]float64, p.n), obs: obs}
}

// Accumulate implements Family.
func (p *Poisson) Accumulate(stats Stats, x [][]float64, gamma [][]float64) error {
	s, ok := stats.(*poissonStats)
	if !ok {
		return fmt.Errorf("Poisson.Accumulate: %w", errs.ErrShapeMismatch)
	}
	for t, row := range x {
		for j := 0; j < p.n; j++ {
			w := gamma[t][j]
			s.post[j] += w
			for i, v := range row {
				s.obs[j][i] += w * v
			}
		}
	}
	return nil
}

// MStep implements Family.
func (p *Poisson) MStep(stats Stats, trainMask string) error {
	if err := validateMask(trainMask, poissonLetters); err != nil {
		return fmt.Errorf("Poisson.MStep: %w", err)
	}
	if !containsLetter(trainMask, 'l') {
		return nil
	}
	s, ok := stats.(*poissonStats)
	if !ok {
		return fmt.Errorf("Poisson.MStep: %w", errs.ErrShapeMismatch)
	}
	for j := 0; j < p.n; j++ {
		row := make([]float64, p.d)
		for i := 0; i < p.d; i++ {
			row[i] = (p.priors.Alpha + s.obs[j][i]) / (p.priors.Beta + s.post[j])
			if row[i] <= 0 {
				row[i] = 1e-6
			}
		}
		p.lambdas[j] = row
	}
	return nil
}

// SampleFromState implements Family. Draws are generated via
// gonum.org/v1/gonum/stat/distuv's Poisson distribution, seeded from rng
// through its Src field for reproducibility.
func (p *Poisson) SampleFromState(j int, rng *rand.Rand) ([]float64, error) {
	if j < 0 || j >= p.n {
		return nil, fmt.Errorf("Poisson.SampleFromState: %w", errs.ErrShapeMismatch)
	}
	out := make([]float64, p.d)
	for i := 0; i < p.d; i++ {
		dist := distuv.Poisson{Lambda: p.lambdas[j][i], Src: rng}
		out[i] = dist.Rand()
	}
	return out, nil
}

// NFreeScalars implements Family.
func (p *Poisson) NFreeScalars(trainMask string) int {
	if !containsLetter(trainMask, 'l') {
		return 0
	}
	return p.n * p.d
}
