package estimator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/katalvlaran/gohmm/convergence"
	"github.com/katalvlaran/gohmm/emission"
	"github.com/katalvlaran/gohmm/errs"
	"github.com/katalvlaran/gohmm/paramguard"
)

// Model is the immutable-configuration, mutable-fitted-state HMM estimator:
// n_components hidden states, a pluggable emission.Family, and the
// start_prob/trans_mat parameters shared by every family.
type Model struct {
	opts   Options
	family emission.Family

	n         int
	startProb []float64
	transMat  [][]float64

	monitor *convergence.Monitor
	rng     *rand.Rand
	fitted  bool
}

// NewModel constructs a Model around an already-constructed emission.Family
// and the given options. If WithNComponents was used, its value must match
// family.NComponents().
func NewModel(family emission.Family, opts ...Option) (*Model, error) {
	o := gatherOptions(opts)
	if o.algorithm != Viterbi && o.algorithm != MAP {
		return nil, fmt.Errorf("NewModel: algorithm %d: %w", o.algorithm, errs.ErrInvalidOption)
	}
	n := family.NComponents()
	if o.nComponents > 0 && o.nComponents != n {
		return nil, fmt.Errorf("NewModel: WithNComponents(%d) does not match family's %d states: %w", o.nComponents, n, errs.ErrShapeMismatch)
	}

	m := &Model{
		opts:   o,
		family: family,
		n:      n,
		rng:    rngFromSeed(o.randomSeed),
	}
	return m, nil
}

// SetStartProb assigns start_prob directly, for callers that want to seed
// Fit from a known distribution instead of the uniform default Fit
// otherwise assigns. Must have length NComponents().
func (m *Model) SetStartProb(v []float64) error {
	if len(v) != m.n {
		return fmt.Errorf("Model.SetStartProb: %w", errs.ErrShapeMismatch)
	}
	m.startProb = append([]float64(nil), v...)
	return nil
}

// SetTransMat assigns trans_mat directly, for callers that want to seed
// Fit from a known transition matrix instead of the uniform default Fit
// otherwise assigns. Must be NComponents() x NComponents().
func (m *Model) SetTransMat(a [][]float64) error {
	if len(a) != m.n {
		return fmt.Errorf("Model.SetTransMat: %w", errs.ErrShapeMismatch)
	}
	rows := make([][]float64, m.n)
	for i, row := range a {
		if len(row) != m.n {
			return fmt.Errorf("Model.SetTransMat: %w", errs.ErrShapeMismatch)
		}
		rows[i] = append([]float64(nil), row...)
	}
	m.transMat = rows
	return nil
}

// NComponents returns N, the number of hidden states.
func (m *Model) NComponents() int { return m.n }

// Fitted reports whether Fit has completed successfully at least once.
func (m *Model) Fitted() bool { return m.fitted }

// Monitor returns the ConvergenceMonitor from the most recent Fit call, or
// nil if Fit has not been called yet.
func (m *Model) Monitor() *convergence.Monitor { return m.monitor }

// Warnings returns every non-fatal warning (non-monotone log-probability
// steps, covariance flooring) recorded during the most recent Fit call, or
// nil if Fit has not been called yet.
func (m *Model) Warnings() []convergence.Warning {
	if m.monitor == nil {
		return nil
	}
	return m.monitor.Warnings()
}

// rngFromSeed returns a deterministic *rand.Rand, seed==0 falling back to a
// fixed default stream.
func rngFromSeed(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = 1
	}
	return rand.New(rand.NewSource(s))
}

// familyMask strips the shared "s"/"t" letters from a params/init_params
// mask, leaving only the letters meaningful to the emission family.
func familyMask(mask string) string {
	var b strings.Builder
	for _, r := range mask {
		if r != 's' && r != 't' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// initialize applies init_params: uniform start_prob/trans_mat defaults
// plus family.Initialize for the family-specific letters.
func (m *Model) initialize(x [][]float64) error {
	if containsLetter(m.opts.initParams, 's') && m.startProb == nil {
		m.startProb = uniform(m.n)
	}
	if containsLetter(m.opts.initParams, 't') && m.transMat == nil {
		m.transMat = make([][]float64, m.n)
		for i := range m.transMat {
			m.transMat[i] = uniform(m.n)
		}
	}
	if m.startProb == nil {
		m.startProb = uniform(m.n)
	}
	if m.transMat == nil {
		m.transMat = make([][]float64, m.n)
		for i := range m.transMat {
			m.transMat[i] = uniform(m.n)
		}
	}

	fMask := familyMask(m.opts.initParams)
	if fMask != "" {
		if err := m.family.Initialize(x, fMask, m.rng); err != nil {
			return fmt.Errorf("Model.initialize: %w", err)
		}
	}
	return nil
}

func uniform(n int) []float64 {
	out := make([]float64, n)
	u := 1.0 / float64(n)
	for i := range out {
		out[i] = u
	}
	return out
}

func containsLetter(mask string, r rune) bool {
	for _, c := range mask {
		if c == r {
			return true
		}
	}
	return false
}

// validateParams checks the Model's own parameters via ParamGuard.
func (m *Model) validateParams() error {
	if err := paramguard.ValidateStochastic([][]float64{m.startProb}, paramguard.DefaultEpsilon); err != nil {
		return fmt.Errorf("Model.validateParams: start_prob: %w", err)
	}
	if err := paramguard.ValidateStochastic(m.transMat, paramguard.DefaultEpsilon); err != nil {
		return fmt.Errorf("Model.validateParams: trans_mat: %w", err)
	}
	return m.family.Validate()
}

// AIC returns the Akaike information criterion 2k - 2*score(X, lengths).
func (m *Model) AIC(x [][]float64, lengths []int) (float64, error) {
	ll, err := m.Score(x, lengths)
	if err != nil {
		return 0, fmt.Errorf("Model.AIC: %w", err)
	}
	k := m.nFreeScalars()
	return 2*float64(k) - 2*ll, nil
}

// BIC returns the Bayesian information criterion k*log(T) - 2*score(X, lengths).
func (m *Model) BIC(x [][]float64, lengths []int) (float64, error) {
	ll, err := m.Score(x, lengths)
	if err != nil {
		return 0, fmt.Errorf("Model.BIC: %w", err)
	}
	k := m.nFreeScalars()
	t := len(x)
	return float64(k)*logT(t) - 2*ll, nil
}

func logT(t int) float64 {
	return math.Log(float64(t))
}

func (m *Model) nFreeScalars() int {
	var total int
	if containsLetter(m.opts.params, 's') {
		total += m.n - 1
	}
	if containsLetter(m.opts.params, 't') {
		total += m.n * (m.n - 1)
	}
	total += m.family.NFreeScalars(familyMask(m.opts.params))
	return total
}
