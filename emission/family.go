package emission

import "math/rand"

// DefaultPrior is the flat/uninformative Dirichlet pseudocount under this
// module's "alpha" convention: M-step formulas compute
// obs[j,k] + prior - 1, so prior == 1.0 reproduces plain maximum-likelihood
// re-estimation. See SPEC_FULL.md §4.3.6.
const DefaultPrior = 1.0

// Stats is an opaque per-family sufficient-statistics accumulator, created
// fresh by NewStats at the start of each EM iteration and discarded after
// MStep consumes it. Each Family implementation defines its own concrete
// type and type-asserts it back out of this interface in Accumulate/MStep;
// callers never inspect it.
type Stats interface{}

// Family is the capability interface every emission distribution satisfies.
// The estimator package is parameterised over Family so the same
// forward/backward/Baum-Welch orchestration drives Categorical, Gaussian,
// Multinomial, Poisson, and GMM emissions alike.
type Family interface {
	// Validate checks the family's current parameters for correct shape
	// and stochasticity/positivity.
	Validate() error

	// Initialize randomises or data-derives the parameters selected by
	// initMask (a string over family-specific letters); a parameter
	// already set by the caller before Fit is left untouched.
	Initialize(x [][]float64, initMask string, rng *rand.Rand) error

	// LogLikelihood returns B with B[t][j] = log p(x_t | state = j) for
	// every row of x, a T×N matrix.
	LogLikelihood(x [][]float64) ([][]float64, error)

	// NewStats allocates a zeroed sufficient-statistics accumulator.
	NewStats() Stats

	// Accumulate folds one subsequence's contribution (observations x and
	// their state posteriors gamma) into stats.
	Accumulate(stats Stats, x [][]float64, gamma [][]float64) error

	// MStep re-estimates the parameters selected by trainMask from stats.
	MStep(stats Stats, trainMask string) error

	// SampleFromState draws one observation from state j.
	SampleFromState(j int, rng *rand.Rand) ([]float64, error)

	// NFreeScalars returns the number of independently free scalar
	// parameters selected by trainMask, for AIC/BIC scoring.
	NFreeScalars(trainMask string) int

	// NComponents returns N, the number of hidden states this family is
	// parameterised for.
	NComponents() int
}

// Warner is implemented by emission families that can accumulate non-fatal
// M-step events (currently: covariance flooring) for the estimator to
// surface through its ConvergenceMonitor. Not every Family needs one — the
// discrete families (Categorical, Multinomial, Poisson) have no covariance
// to floor — so it is a capability interface the estimator type-asserts
// for, rather than a method on Family itself.
type Warner interface {
	// Warnings returns and clears the events accumulated since the last call.
	Warnings() []string
}

// rngFromSeed returns a deterministic *rand.Rand: seed==0 falls back to a
// fixed default so that the zero value of a random-state option still
// produces reproducible output rather than a time-seeded stream.
//
// Complexity: O(1).
func rngFromSeed(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = 1
	}
	return rand.New(rand.NewSource(s))
}

// containsLetter reports whether mask contains r.
func containsLetter(mask string, r rune) bool {
	for _, c := range mask {
		if c == r {
			return true
		}
	}
	return false
}

// validateMask rejects any letter in mask that is not in allowed, per
// SPEC_FULL.md §4.3.6's decision to reject rather than silently ignore
// unrecognised params/init_params letters.
func validateMask(mask, allowed string) error {
	for _, c := range mask {
		if !containsLetter(allowed, c) {
			return ErrUnknownLetter
		}
	}
	return nil
}
