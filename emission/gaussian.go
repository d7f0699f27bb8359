package emission

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/gohmm/errs"
	"github.com/katalvlaran/gohmm/numkernel"
	"github.com/katalvlaran/gohmm/paramguard"
)

// gaussianLetters is the recognised params/init_params alphabet for
// Gaussian: "m" selects means, "c" selects covariances.
const gaussianLetters = "mc"

// defaultMinCovar is the diagonal flooring value applied when a
// re-estimated covariance is not positive-definite.
const defaultMinCovar = 1e-3

// GaussianPriors holds the conjugate (Normal-Inverse-Wishart-style) MAP
// priors used by the Gaussian M-step: means_prior mu0, means_weight lambda,
// covars_prior beta, covars_weight alpha. With zero values the means are
// plain maximum-likelihood estimates; the covariance denominators still
// carry their constant terms (post+1 for spherical/diag, post+D+1 for
// full/tied).
type GaussianPriors struct {
	MeansPrior   []float64
	MeansWeight  float64
	CovarsPrior  float64
	CovarsWeight float64
	MinCovar     float64
}

// Gaussian implements Family for D-dimensional real-valued observations
// under one of four covariance parameterisations.
type Gaussian struct {
	n, d     int
	covType  CovarianceType
	means    [][]float64 // N x D
	sphVar   []float64   // N, used when covType == Spherical
	diagVar  [][]float64 // N x D, used when covType == Diag
	fullCov  [][][]float64 // N x D x D, used when covType == Full
	tiedCov  [][]float64   // D x D, used when covType == Tied
	priors   GaussianPriors

	warnings []string // non-fatal M-step events (e.g. covariance flooring), drained by Warnings
}

// NewGaussian constructs a Gaussian emission family with n states, d
// dimensions and the given covariance parameterisation. means/covars may be
// nil, in which case Initialize must populate them before use.
func NewGaussian(n, d int, covType CovarianceType, priors GaussianPriors) (*Gaussian, error) {
	if n <= 0 || d <= 0 {
		return nil, fmt.Errorf("NewGaussian: %w", errs.ErrShapeMismatch)
	}
	if priors.MinCovar <= 0 {
		priors.MinCovar = defaultMinCovar
	}
	if priors.MeansPrior == nil {
		priors.MeansPrior = make([]float64, d)
	} else if len(priors.MeansPrior) != d {
		return nil, fmt.Errorf("NewGaussian: %w", errs.ErrShapeMismatch)
	}
	return &Gaussian{n: n, d: d, covType: covType, priors: priors}, nil
}

// NComponents implements Family.
func (g *Gaussian) NComponents() int { return g.n }

// SetMeans assigns the N x D state means directly, for callers that want
// to seed Fit (or run inference) from known parameters instead of letting
// init_params randomise them.
func (g *Gaussian) SetMeans(means [][]float64) error {
	if len(means) != g.n {
		return fmt.Errorf("Gaussian.SetMeans: %w", errs.ErrShapeMismatch)
	}
	out := make([][]float64, g.n)
	for i, row := range means {
		if len(row) != g.d {
			return fmt.Errorf("Gaussian.SetMeans: %w", errs.ErrShapeMismatch)
		}
		out[i] = append([]float64(nil), row...)
	}
	g.means = out
	return nil
}

// SetSphericalCovars assigns the N scalar variances directly; covType must
// be Spherical.
func (g *Gaussian) SetSphericalCovars(variance []float64) error {
	if g.covType != Spherical {
		return fmt.Errorf("Gaussian.SetSphericalCovars: %w", ErrUnknownCovarianceType)
	}
	if len(variance) != g.n {
		return fmt.Errorf("Gaussian.SetSphericalCovars: %w", errs.ErrShapeMismatch)
	}
	g.sphVar = append([]float64(nil), variance...)
	return nil
}

// SetDiagCovars assigns the N x D diagonal variances directly; covType
// must be Diag.
func (g *Gaussian) SetDiagCovars(variance [][]float64) error {
	if g.covType != Diag {
		return fmt.Errorf("Gaussian.SetDiagCovars: %w", ErrUnknownCovarianceType)
	}
	if len(variance) != g.n {
		return fmt.Errorf("Gaussian.SetDiagCovars: %w", errs.ErrShapeMismatch)
	}
	out := make([][]float64, g.n)
	for i, row := range variance {
		if len(row) != g.d {
			return fmt.Errorf("Gaussian.SetDiagCovars: %w", errs.ErrShapeMismatch)
		}
		out[i] = append([]float64(nil), row...)
	}
	g.diagVar = out
	return nil
}

// SetFullCovars assigns the N dense D x D covariances directly; covType
// must be Full.
func (g *Gaussian) SetFullCovars(covs [][][]float64) error {
	if g.covType != Full {
		return fmt.Errorf("Gaussian.SetFullCovars: %w", ErrUnknownCovarianceType)
	}
	if len(covs) != g.n {
		return fmt.Errorf("Gaussian.SetFullCovars: %w", errs.ErrShapeMismatch)
	}
	g.fullCov = covs
	return nil
}

// SetTiedCovar assigns the single dense D x D covariance shared by every
// state; covType must be Tied.
func (g *Gaussian) SetTiedCovar(cov [][]float64) error {
	if g.covType != Tied {
		return fmt.Errorf("Gaussian.SetTiedCovar: %w", ErrUnknownCovarianceType)
	}
	g.tiedCov = cov
	return nil
}

// Validate implements Family.
func (g *Gaussian) Validate() error {
	if g.means == nil {
		return fmt.Errorf("Gaussian.Validate: %w", errs.ErrNotFitted)
	}
	switch g.covType {
	case Spherical:
		return paramguard.ValidateCovarianceDiag(g.sphVar)
	case Diag:
		for _, row := range g.diagVar {
			if err := paramguard.ValidateCovarianceDiag(row); err != nil {
				return err
			}
		}
		return nil
	case Full:
		for _, cov := range g.fullCov {
			if err := paramguard.ValidateCovarianceDense(cov, paramguard.DefaultEpsilon); err != nil {
				return err
			}
		}
		return nil
	case Tied:
		return paramguard.ValidateCovarianceDense(g.tiedCov, paramguard.DefaultEpsilon)
	default:
		return fmt.Errorf("Gaussian.Validate: %w", ErrUnknownCovarianceType)
	}
}

// Initialize implements Family. "m" seeds means from a random observation
// row each; "c" seeds covariances at the identity (unit variances).
func (g *Gaussian) Initialize(x [][]float64, initMask string, rng *rand.Rand) error {
	if err := validateMask(initMask, gaussianLetters); err != nil {
		return fmt.Errorf("Gaussian.Initialize: %w", err)
	}
	if containsLetter(initMask, 'm') && g.means == nil {
		g.means = make([][]float64, g.n)
		for j := 0; j < g.n; j++ {
			row := x[rng.Intn(len(x))]
			g.means[j] = append([]float64(nil), row...)
		}
	}
	if containsLetter(initMask, 'c') {
		g.initCovIdentity()
	}
	return nil
}

func (g *Gaussian) initCovIdentity() {
	switch g.covType {
	case Spherical:
		if g.sphVar == nil {
			g.sphVar = make([]float64, g.n)
			for j := range g.sphVar {
				g.sphVar[j] = 1.0
			}
		}
	case Diag:
		if g.diagVar == nil {
			g.diagVar = make([][]float64, g.n)
			for j := range g.diagVar {
				row := make([]float64, g.d)
				for i := range row {
					row[i] = 1.0
				}
				g.diagVar[j] = row
			}
		}
	case Full:
		if g.fullCov == nil {
			g.fullCov = make([][][]float64, g.n)
			for j := range g.fullCov {
				g.fullCov[j] = identity(g.d)
			}
		}
	case Tied:
		if g.tiedCov == nil {
			g.tiedCov = identity(g.d)
		}
	}
}

func identity(d int) [][]float64 {
	m := newSquare(d)
	for i := 0; i < d; i++ {
		m[i][i] = 1.0
	}
	return m
}

// LogLikelihood implements Family.
func (g *Gaussian) LogLikelihood(x [][]float64) ([][]float64, error) {
	b := make([][]float64, len(x))
	for t, row := range x {
		if len(row) != g.d {
			return nil, fmt.Errorf("Gaussian.LogLikelihood: %w", errs.ErrShapeMismatch)
		}
		b[t] = make([]float64, g.n)
		for j := 0; j < g.n; j++ {
			ll, err := g.logDensity(j, row)
			if err != nil {
				return nil, fmt.Errorf("Gaussian.LogLikelihood: %w", err)
			}
			b[t][j] = ll
		}
	}
	return b, nil
}

func (g *Gaussian) logDensity(j int, x []float64) (float64, error) {
	switch g.covType {
	case Spherical:
		variance := make([]float64, g.d)
		for i := range variance {
			variance[i] = g.sphVar[j]
		}
		return numkernel.DiagGaussianLogDensity(g.means[j], x, variance)
	case Diag:
		return numkernel.DiagGaussianLogDensity(g.means[j], x, g.diagVar[j])
	case Full:
		return numkernel.CholeskyLogDensity(g.means[j], x, g.fullCov[j], g.priors.MinCovar)
	case Tied:
		return numkernel.CholeskyLogDensity(g.means[j], x, g.tiedCov, g.priors.MinCovar)
	default:
		return 0, ErrUnknownCovarianceType
	}
}

// gaussianStats is the Gaussian sufficient-statistics accumulator.
type gaussianStats struct {
	post    []float64     // N
	obs     [][]float64   // N x D
	obsSq   [][]float64   // N x D, used for spherical/diag
	obsOuter [][][]float64 // N x D x D, used for full/tied
	d       int
}

// NewStats implements Family.
func (g *Gaussian) NewStats() Stats {
	s := &gaussianStats{
		post: make([]float64, g.n),
		obs:  make([][]float64, g.n),
		d:    g.d,
	}
	for j := range s.obs {
		s.obs[j] = make([]float64, g.d)
	}
	if g.covType == Spherical || g.covType == Diag {
		s.obsSq = make([][]float64, g.n)
		for j := range s.obsSq {
			s.obsSq[j] = make([]float64, g.d)
		}
	}
	if g.covType == Full || g.covType == Tied {
		s.obsOuter = make([][][]float64, g.n)
		for j := range s.obsOuter {
			s.obsOuter[j] = newSquare(g.d)
		}
	}
	return s
}

// Accumulate implements Family.
func (g *Gaussian) Accumulate(stats Stats, x [][]float64, gamma [][]float64) error {
	s, ok := stats.(*gaussianStats)
	if !ok {
		return fmt.Errorf("Gaussian.Accumulate: %w", errs.ErrShapeMismatch)
	}
	for t, row := range x {
		for j := 0; j < g.n; j++ {
			w := gamma[t][j]
			s.post[j] += w
			for i := 0; i < g.d; i++ {
				s.obs[j][i] += w * row[i]
				if s.obsSq != nil {
					s.obsSq[j][i] += w * row[i] * row[i]
				}
			}
			if s.obsOuter != nil {
				outerAdd(s.obsOuter[j], row, w)
			}
		}
	}
	return nil
}

// MStep implements Family.
func (g *Gaussian) MStep(stats Stats, trainMask string) error {
	if err := validateMask(trainMask, gaussianLetters); err != nil {
		return fmt.Errorf("Gaussian.MStep: %w", err)
	}
	s, ok := stats.(*gaussianStats)
	if !ok {
		return fmt.Errorf("Gaussian.MStep: %w", errs.ErrShapeMismatch)
	}

	lambda := g.priors.MeansWeight
	mu0 := g.priors.MeansPrior
	newMeans := make([][]float64, g.n)
	for j := 0; j < g.n; j++ {
		row := make([]float64, g.d)
		denom := s.post[j] + lambda
		if denom <= 0 {
			row = append([]float64(nil), g.means[j]...)
		} else {
			for i := 0; i < g.d; i++ {
				row[i] = (s.obs[j][i] + lambda*mu0[i]) / denom
			}
		}
		newMeans[j] = row
	}

	if !containsLetter(trainMask, 'c') {
		if containsLetter(trainMask, 'm') {
			g.means = newMeans
		}
		return nil
	}

	alpha := g.priors.CovarsWeight
	beta := g.priors.CovarsPrior
	switch g.covType {
	case Diag, Spherical:
		diag := make([][]float64, g.n)
		for j := 0; j < g.n; j++ {
			row := make([]float64, g.d)
			denom := s.post[j] + 2*alpha + 1
			for i := 0; i < g.d; i++ {
				m := newMeans[j][i]
				numer := s.obsSq[j][i] - 2*m*s.obs[j][i] + s.post[j]*m*m + 2*beta + lambda*(m-mu0[i])*(m-mu0[i])
				v := numer / denom
				if v < g.priors.MinCovar {
					v = g.priors.MinCovar
					g.warnings = append(g.warnings, fmt.Sprintf("Gaussian.MStep: state %d dim %d: covariance floored to min_covar", j, i))
				}
				row[i] = v
			}
			diag[j] = row
		}
		if g.covType == Diag {
			g.diagVar = diag
		} else {
			sph := make([]float64, g.n)
			for j, row := range diag {
				var sum float64
				for _, v := range row {
					sum += v
				}
				sph[j] = sum / float64(g.d)
			}
			g.sphVar = sph
		}
	case Full:
		full := make([][][]float64, g.n)
		for j := 0; j < g.n; j++ {
			full[j] = g.centeredFullCovariance(s, j, newMeans[j])
		}
		g.fullCov = full
	case Tied:
		sum := newSquare(g.d)
		var totalPost float64
		for j := 0; j < g.n; j++ {
			cov := g.centeredFullCovariance(s, j, newMeans[j])
			for i := range sum {
				for k := range sum[i] {
					sum[i][k] += cov[i][k] * (s.post[j] + 2*alpha + float64(g.d) + 1)
				}
			}
			totalPost += s.post[j]
		}
		if totalPost > 0 {
			for i := range sum {
				for k := range sum[i] {
					sum[i][k] /= totalPost
				}
			}
		}
		g.tiedCov = sum
	default:
		return fmt.Errorf("Gaussian.MStep: %w", ErrUnknownCovarianceType)
	}

	if containsLetter(trainMask, 'm') {
		g.means = newMeans
	}
	return nil
}

// centeredFullCovariance computes a state's centred covariance from
// obsOuter (second raw moment) and the re-estimated mean, applying the
// conjugate prior term and min_covar flooring if the result is not
// positive-definite.
func (g *Gaussian) centeredFullCovariance(s *gaussianStats, j int, mean []float64) [][]float64 {
	alpha := g.priors.CovarsWeight
	beta := g.priors.CovarsPrior
	lambda := g.priors.MeansWeight
	mu0 := g.priors.MeansPrior
	denom := s.post[j] + 2*alpha + float64(g.d) + 1

	cov := newSquare(g.d)
	for i := 0; i < g.d; i++ {
		for k := 0; k < g.d; k++ {
			v := s.obsOuter[j][i][k] - s.post[j]*mean[i]*mean[k]
			if i == k {
				v += 2*beta + lambda*(mean[i]-mu0[i])*(mean[i]-mu0[i])
			}
			cov[i][k] = v / denom
		}
	}

	if err := paramguard.ValidateCovarianceDense(cov, paramguard.DefaultEpsilon); err != nil {
		for i := 0; i < g.d; i++ {
			cov[i][i] += g.priors.MinCovar
		}
		g.warnings = append(g.warnings, fmt.Sprintf("Gaussian.MStep: state %d: covariance floored after failing the positive-definite check", j))
	}
	return cov
}

// Warnings returns and clears the non-fatal M-step events (currently:
// covariance flooring) accumulated since the last call.
func (g *Gaussian) Warnings() []string {
	out := g.warnings
	g.warnings = nil
	return out
}

// SampleFromState implements Family.
func (g *Gaussian) SampleFromState(j int, rng *rand.Rand) ([]float64, error) {
	if j < 0 || j >= g.n {
		return nil, fmt.Errorf("Gaussian.SampleFromState: %w", errs.ErrShapeMismatch)
	}
	x := make([]float64, g.d)
	switch g.covType {
	case Spherical:
		sd := math.Sqrt(g.sphVar[j])
		for i := range x {
			x[i] = g.means[j][i] + sd*rng.NormFloat64()
		}
	case Diag:
		for i := range x {
			x[i] = g.means[j][i] + math.Sqrt(g.diagVar[j][i])*rng.NormFloat64()
		}
	case Full, Tied:
		var c [][]float64
		if g.covType == Tied {
			c = g.tiedCov
		} else {
			c = g.fullCov[j]
		}
		sample, err := numkernel.SampleMultivariateNormal(g.means[j], c, g.priors.MinCovar, rng)
		if err != nil {
			return nil, fmt.Errorf("Gaussian.SampleFromState: %w", err)
		}
		x = sample
	}
	return x, nil
}

// NFreeScalars implements Family.
func (g *Gaussian) NFreeScalars(trainMask string) int {
	var total int
	if containsLetter(trainMask, 'm') {
		total += g.n * g.d
	}
	if containsLetter(trainMask, 'c') {
		switch g.covType {
		case Spherical:
			total += g.n
		case Diag:
			total += g.n * g.d
		case Full:
			total += g.n * g.d * (g.d + 1) / 2
		case Tied:
			total += g.d * (g.d + 1) / 2
		}
	}
	return total
}
