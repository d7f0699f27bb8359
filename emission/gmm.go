package emission

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/gohmm/errs"
	"github.com/katalvlaran/gohmm/numkernel"
	"github.com/katalvlaran/gohmm/paramguard"
)

// gmmLetters is the recognised params/init_params alphabet for GMM:
// "w" weights, "m" means, "c" covariances.
const gmmLetters = "wmc"

// gmmComponent is one (state, mixture) Gaussian component.
type gmmComponent struct {
	mean    []float64
	sphVar  float64
	diagVar []float64
	fullCov [][]float64
}

// GMM implements Family for observations drawn from a per-state mixture of
// M Gaussian components.
type GMM struct {
	n, m, d int
	covType CovarianceType
	weights [][]float64      // N x M, row-stochastic
	comps   [][]gmmComponent // N x M
	priors  GaussianPriors

	warnings []string // non-fatal M-step events (e.g. covariance flooring), drained by Warnings
}

// Warnings returns and clears the non-fatal M-step events (currently:
// covariance flooring) accumulated since the last call.
func (g *GMM) Warnings() []string {
	out := g.warnings
	g.warnings = nil
	return out
}

// NewGMM constructs a GMM emission family with n states, m mixture
// components per state, and d-dimensional observations.
func NewGMM(n, m, d int, covType CovarianceType, priors GaussianPriors) (*GMM, error) {
	if n <= 0 || m <= 0 || d <= 0 {
		return nil, fmt.Errorf("NewGMM: %w", errs.ErrShapeMismatch)
	}
	if priors.MinCovar <= 0 {
		priors.MinCovar = defaultMinCovar
	}
	if priors.MeansPrior == nil {
		priors.MeansPrior = make([]float64, d)
	}
	return &GMM{n: n, m: m, d: d, covType: covType, priors: priors}, nil
}

// NComponents implements Family.
func (g *GMM) NComponents() int { return g.n }

// Validate implements Family.
func (g *GMM) Validate() error {
	if g.comps == nil {
		return fmt.Errorf("GMM.Validate: %w", errs.ErrNotFitted)
	}
	if err := paramguard.ValidateStochastic(g.weights, paramguard.DefaultEpsilon); err != nil {
		return err
	}
	for j := 0; j < g.n; j++ {
		for _, c := range g.comps[j] {
			if err := g.validateComponent(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *GMM) validateComponent(c gmmComponent) error {
	switch g.covType {
	case Spherical:
		return paramguard.ValidateCovarianceDiag([]float64{c.sphVar})
	case Diag:
		return paramguard.ValidateCovarianceDiag(c.diagVar)
	case Full, Tied:
		return paramguard.ValidateCovarianceDense(c.fullCov, paramguard.DefaultEpsilon)
	default:
		return ErrUnknownCovarianceType
	}
}

// Initialize implements Family.
func (g *GMM) Initialize(x [][]float64, initMask string, rng *rand.Rand) error {
	if err := validateMask(initMask, gmmLetters); err != nil {
		return fmt.Errorf("GMM.Initialize: %w", err)
	}
	if g.comps == nil {
		g.comps = make([][]gmmComponent, g.n)
		for j := range g.comps {
			g.comps[j] = make([]gmmComponent, g.m)
		}
	}
	if containsLetter(initMask, 'w') && g.weights == nil {
		g.weights = make([][]float64, g.n)
		for j := range g.weights {
			row := make([]float64, g.m)
			uniform := 1.0 / float64(g.m)
			for k := range row {
				row[k] = uniform
			}
			g.weights[j] = row
		}
	}
	if containsLetter(initMask, 'm') {
		for j := 0; j < g.n; j++ {
			for k := 0; k < g.m; k++ {
				if g.comps[j][k].mean == nil {
					g.comps[j][k].mean = append([]float64(nil), x[rng.Intn(len(x))]...)
				}
			}
		}
	}
	if containsLetter(initMask, 'c') {
		for j := 0; j < g.n; j++ {
			for k := 0; k < g.m; k++ {
				g.initComponentCov(&g.comps[j][k])
			}
		}
	}
	return nil
}

func (g *GMM) initComponentCov(c *gmmComponent) {
	switch g.covType {
	case Spherical:
		if c.sphVar == 0 {
			c.sphVar = 1.0
		}
	case Diag:
		if c.diagVar == nil {
			c.diagVar = make([]float64, g.d)
			for i := range c.diagVar {
				c.diagVar[i] = 1.0
			}
		}
	case Full, Tied:
		if c.fullCov == nil {
			c.fullCov = identity(g.d)
		}
	}
}

func (g *GMM) componentLogDensity(c gmmComponent, x []float64) (float64, error) {
	switch g.covType {
	case Spherical:
		variance := make([]float64, g.d)
		for i := range variance {
			variance[i] = c.sphVar
		}
		return numkernel.DiagGaussianLogDensity(c.mean, x, variance)
	case Diag:
		return numkernel.DiagGaussianLogDensity(c.mean, x, c.diagVar)
	case Full, Tied:
		return numkernel.CholeskyLogDensity(c.mean, x, c.fullCov, g.priors.MinCovar)
	default:
		return 0, ErrUnknownCovarianceType
	}
}

// LogLikelihood implements Family: B[t,j] = logsumexp_m(log w[j,m] + N(x_t | comp[j,m])).
func (g *GMM) LogLikelihood(x [][]float64) ([][]float64, error) {
	b := make([][]float64, len(x))
	for t, row := range x {
		if len(row) != g.d {
			return nil, fmt.Errorf("GMM.LogLikelihood: %w", errs.ErrShapeMismatch)
		}
		b[t] = make([]float64, g.n)
		for j := 0; j < g.n; j++ {
			terms := make([]float64, g.m)
			for mix := 0; mix < g.m; mix++ {
				ld, err := g.componentLogDensity(g.comps[j][mix], row)
				if err != nil {
					return nil, fmt.Errorf("GMM.LogLikelihood: %w", err)
				}
				terms[mix] = math.Log(g.weights[j][mix]) + ld
			}
			b[t][j] = numkernel.LogSumExp(terms)
		}
	}
	return b, nil
}

// gmmStats is the GMM sufficient-statistics accumulator.
type gmmStats struct {
	postMixSum [][]float64     // N x M
	post       [][]float64     // N x M, per-component total posterior mass
	obs        [][][]float64   // N x M x D
	obsSq      [][][]float64   // N x M x D, diag/spherical
	obsOuter   [][][][]float64 // N x M x D x D, full/tied
}

// NewStats implements Family.
func (g *GMM) NewStats() Stats {
	s := &gmmStats{
		postMixSum: make([][]float64, g.n),
		post:       make([][]float64, g.n),
		obs:        make([][][]float64, g.n),
	}
	needSq := g.covType == Spherical || g.covType == Diag
	needOuter := g.covType == Full || g.covType == Tied
	if needSq {
		s.obsSq = make([][][]float64, g.n)
	}
	if needOuter {
		s.obsOuter = make([][][][]float64, g.n)
	}
	for j := 0; j < g.n; j++ {
		s.postMixSum[j] = make([]float64, g.m)
		s.post[j] = make([]float64, g.m)
		s.obs[j] = make([][]float64, g.m)
		if needSq {
			s.obsSq[j] = make([][]float64, g.m)
		}
		if needOuter {
			s.obsOuter[j] = make([][][]float64, g.m)
		}
		for mIdx := 0; mIdx < g.m; mIdx++ {
			s.obs[j][mIdx] = make([]float64, g.d)
			if needSq {
				s.obsSq[j][mIdx] = make([]float64, g.d)
			}
			if needOuter {
				s.obsOuter[j][mIdx] = newSquare(g.d)
			}
		}
	}
	return s
}

// Accumulate implements Family. gamma here is the HMM state posterior
// gamma[t,j]; the per-mixture responsibility gamma[t,j,m] is recomputed
// from the current component parameters, per spec.md §4.3.5.
func (g *GMM) Accumulate(stats Stats, x [][]float64, gamma [][]float64) error {
	s, ok := stats.(*gmmStats)
	if !ok {
		return fmt.Errorf("GMM.Accumulate: %w", errs.ErrShapeMismatch)
	}
	for t, row := range x {
		for j := 0; j < g.n; j++ {
			resp, err := g.mixtureResponsibilities(j, row)
			if err != nil {
				return fmt.Errorf("GMM.Accumulate: %w", err)
			}
			for mIdx := 0; mIdx < g.m; mIdx++ {
				w := gamma[t][j] * resp[mIdx]
				s.postMixSum[j][mIdx] += w
				s.post[j][mIdx] += w
				for i := 0; i < g.d; i++ {
					s.obs[j][mIdx][i] += w * row[i]
					if s.obsSq != nil {
						s.obsSq[j][mIdx][i] += w * row[i] * row[i]
					}
				}
				if s.obsOuter != nil {
					outerAdd(s.obsOuter[j][mIdx], row, w)
				}
			}
		}
	}
	return nil
}

// mixtureResponsibilities returns gamma[t,j,m] = w[j,m] N(x|comp[j,m]) /
// sum_m' w[j,m'] N(x|comp[j,m']) for one observation and state.
func (g *GMM) mixtureResponsibilities(j int, x []float64) ([]float64, error) {
	logTerms := make([]float64, g.m)
	for mIdx := 0; mIdx < g.m; mIdx++ {
		ld, err := g.componentLogDensity(g.comps[j][mIdx], x)
		if err != nil {
			return nil, err
		}
		logTerms[mIdx] = math.Log(g.weights[j][mIdx]) + ld
	}
	total := numkernel.LogSumExp(logTerms)
	resp := make([]float64, g.m)
	for mIdx := range resp {
		resp[mIdx] = math.Exp(logTerms[mIdx] - total)
	}
	return resp, nil
}

// MStep implements Family.
func (g *GMM) MStep(stats Stats, trainMask string) error {
	if err := validateMask(trainMask, gmmLetters); err != nil {
		return fmt.Errorf("GMM.MStep: %w", err)
	}
	s, ok := stats.(*gmmStats)
	if !ok {
		return fmt.Errorf("GMM.MStep: %w", errs.ErrShapeMismatch)
	}

	if containsLetter(trainMask, 'w') {
		for j := 0; j < g.n; j++ {
			g.weights[j] = paramguard.NormalizeRow(s.postMixSum[j], DefaultPrior)
		}
	}

	if !containsLetter(trainMask, 'm') && !containsLetter(trainMask, 'c') {
		return nil
	}

	for j := 0; j < g.n; j++ {
		for mIdx := 0; mIdx < g.m; mIdx++ {
			g.reestimateComponent(&g.comps[j][mIdx], s, j, mIdx, trainMask)
		}
	}
	return nil
}

// reestimateComponent applies the §4.3.2 M-step formulas to one (state,
// mixture) component, conditioned on its per-mixture sufficient stats.
func (g *GMM) reestimateComponent(c *gmmComponent, s *gmmStats, j, mIdx int, trainMask string) {
	lambda := g.priors.MeansWeight
	mu0 := g.priors.MeansPrior
	post := s.post[j][mIdx]
	denom := post + lambda

	newMean := make([]float64, g.d)
	if denom <= 0 {
		copy(newMean, c.mean)
	} else {
		for i := 0; i < g.d; i++ {
			newMean[i] = (s.obs[j][mIdx][i] + lambda*mu0[i]) / denom
		}
	}

	if containsLetter(trainMask, 'c') {
		alpha := g.priors.CovarsWeight
		beta := g.priors.CovarsPrior
		switch g.covType {
		case Spherical, Diag:
			covDenom := post + 2*alpha + 1
			diag := make([]float64, g.d)
			for i := 0; i < g.d; i++ {
				mVal := newMean[i]
				numer := s.obsSq[j][mIdx][i] - 2*mVal*s.obs[j][mIdx][i] + post*mVal*mVal + 2*beta + lambda*(mVal-mu0[i])*(mVal-mu0[i])
				v := numer / covDenom
				if v < g.priors.MinCovar {
					v = g.priors.MinCovar
					g.warnings = append(g.warnings, fmt.Sprintf("GMM.MStep: state %d mixture %d dim %d: covariance floored to min_covar", j, mIdx, i))
				}
				diag[i] = v
			}
			if g.covType == Diag {
				c.diagVar = diag
			} else {
				var sum float64
				for _, v := range diag {
					sum += v
				}
				c.sphVar = sum / float64(g.d)
			}
		case Full, Tied:
			covDenom := post + 2*alpha + float64(g.d) + 1
			cov := newSquare(g.d)
			for i := 0; i < g.d; i++ {
				for k := 0; k < g.d; k++ {
					v := s.obsOuter[j][mIdx][i][k] - post*newMean[i]*newMean[k]
					if i == k {
						v += 2*beta + lambda*(newMean[i]-mu0[i])*(newMean[i]-mu0[i])
					}
					cov[i][k] = v / covDenom
				}
			}
			if err := paramguard.ValidateCovarianceDense(cov, paramguard.DefaultEpsilon); err != nil {
				for i := 0; i < g.d; i++ {
					cov[i][i] += g.priors.MinCovar
				}
				g.warnings = append(g.warnings, fmt.Sprintf("GMM.MStep: state %d mixture %d: covariance floored after failing the positive-definite check", j, mIdx))
			}
			c.fullCov = cov
		}
	}

	if containsLetter(trainMask, 'm') {
		c.mean = newMean
	}
}

// SampleFromState implements Family.
func (g *GMM) SampleFromState(j int, rng *rand.Rand) ([]float64, error) {
	if j < 0 || j >= g.n {
		return nil, fmt.Errorf("GMM.SampleFromState: %w", errs.ErrShapeMismatch)
	}
	u := rng.Float64()
	var cum float64
	mixIdx := g.m - 1
	for mIdx := 0; mIdx < g.m; mIdx++ {
		cum += g.weights[j][mIdx]
		if u <= cum {
			mixIdx = mIdx
			break
		}
	}
	c := g.comps[j][mixIdx]
	x := make([]float64, g.d)
	switch g.covType {
	case Spherical:
		sd := math.Sqrt(c.sphVar)
		for i := range x {
			x[i] = c.mean[i] + sd*rng.NormFloat64()
		}
	case Diag:
		for i := range x {
			x[i] = c.mean[i] + math.Sqrt(c.diagVar[i])*rng.NormFloat64()
		}
	case Full, Tied:
		sample, err := numkernel.SampleMultivariateNormal(c.mean, c.fullCov, g.priors.MinCovar, rng)
		if err != nil {
			return nil, fmt.Errorf("GMM.SampleFromState: %w", err)
		}
		x = sample
	}
	return x, nil
}

// NFreeScalars implements Family.
func (g *GMM) NFreeScalars(trainMask string) int {
	var total int
	if containsLetter(trainMask, 'w') {
		total += g.n * (g.m - 1)
	}
	if containsLetter(trainMask, 'm') {
		total += g.n * g.m * g.d
	}
	if containsLetter(trainMask, 'c') {
		switch g.covType {
		case Spherical:
			total += g.n * g.m
		case Diag:
			total += g.n * g.m * g.d
		case Full:
			total += g.n * g.m * g.d * (g.d + 1) / 2
		case Tied:
			total += g.d * (g.d + 1) / 2
		}
	}
	return total
}
