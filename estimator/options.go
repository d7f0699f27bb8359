package estimator

import (
	"github.com/katalvlaran/gohmm/lattice"
)

// Algorithm selects the decoding strategy used by Decode/Predict.
type Algorithm int

const (
	// Viterbi decodes the single most likely state path.
	Viterbi Algorithm = iota
	// MAP decodes the per-timestep posterior-argmax path.
	MAP
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultNIter is the EM iteration budget when WithNIter is not used.
	DefaultNIter = 10
	// DefaultTol is the log-probability delta convergence threshold.
	DefaultTol = 1e-2
	// DefaultParams trains start_prob, trans_mat and the emission family's
	// own parameters every iteration.
	DefaultParams = "ste"
	// DefaultInitParams initialises the same letters as DefaultParams when
	// the caller has not already supplied them.
	DefaultInitParams = "ste"
	// DefaultStartProbPrior is the flat Dirichlet pseudocount on start_prob.
	DefaultStartProbPrior = 1.0
	// DefaultTransMatPrior is the flat Dirichlet pseudocount on trans_mat.
	DefaultTransMatPrior = 1.0
	// DefaultMaxWorkers bounds the E-step worker pool when WithMaxWorkers
	// is not used.
	DefaultMaxWorkers = 4
)

const (
	panicNComponentsInvalid = "estimator: WithNComponents: n must be > 0"
	panicNIterInvalid       = "estimator: WithNIter: n must be > 0"
	panicTolInvalid         = "estimator: WithTol: tol must be > 0"
	panicPriorInvalid       = "estimator: prior must be >= 1"
	panicMaxWorkersInvalid  = "estimator: WithMaxWorkers: n must be > 0"
)

// Option mutates internal Options. Constructors panic only on nonsensical
// (programmer-error) values; an unknown algorithm is rejected by NewModel
// and unknown params/init_params letters by Fit, both with errors wrapping
// errs.ErrInvalidOption, since those values typically originate from
// caller-supplied strings rather than hardcoded constants.
type Option func(*Options)

// Options stores the effective Model configuration after applying the
// Option setters passed to NewModel.
type Options struct {
	nComponents int
	algorithm   Algorithm
	nIter       int
	tol         float64
	verbose     bool
	params      string
	initParams  string
	impl        lattice.Implementation
	randomSeed  int64
	startPrior  float64
	transPrior  float64
	maxWorkers  int
}

func defaultOptions() Options {
	return Options{
		nComponents: -1, // unset; validated against the emission family's NComponents() in NewModel
		algorithm:   Viterbi,
		nIter:       DefaultNIter,
		tol:         DefaultTol,
		params:      DefaultParams,
		initParams:  DefaultInitParams,
		impl:        lattice.LogImplementation,
		startPrior:  DefaultStartProbPrior,
		transPrior:  DefaultTransMatPrior,
		maxWorkers:  DefaultMaxWorkers,
	}
}

// WithNComponents sets N, the number of hidden states. Panics if n <= 0.
func WithNComponents(n int) Option {
	if n <= 0 {
		panic(panicNComponentsInvalid)
	}
	return func(o *Options) { o.nComponents = n }
}

// WithAlgorithm sets the decoding algorithm used by Decode/Predict.
func WithAlgorithm(a Algorithm) Option {
	return func(o *Options) { o.algorithm = a }
}

// WithNIter sets the EM iteration budget. Panics if n <= 0.
func WithNIter(n int) Option {
	if n <= 0 {
		panic(panicNIterInvalid)
	}
	return func(o *Options) { o.nIter = n }
}

// WithTol sets the convergence tolerance. Panics if tol <= 0.
func WithTol(tol float64) Option {
	if tol <= 0 {
		panic(panicTolInvalid)
	}
	return func(o *Options) { o.tol = tol }
}

// WithVerbose toggles convergence monitor logging.
func WithVerbose(v bool) Option {
	return func(o *Options) { o.verbose = v }
}

// WithParams sets which parameters the M-step re-estimates, as a string
// over the shared letters "s" (start_prob), "t" (trans_mat), plus the
// emission family's own letters (e.g. "e", "mc", "wmc", "l").
func WithParams(mask string) Option {
	return func(o *Options) { o.params = mask }
}

// WithInitParams sets which parameters Fit initialises before the first EM
// iteration, using the same letter alphabet as WithParams.
func WithInitParams(mask string) Option {
	return func(o *Options) { o.initParams = mask }
}

// WithImplementation selects the log-space or scaling lattice recurrence.
func WithImplementation(impl lattice.Implementation) Option {
	return func(o *Options) { o.impl = impl }
}

// WithRandomState sets the seed for Fit's initialisation RNG and Sample's
// draw RNG. seed == 0 falls back to a fixed internal default.
func WithRandomState(seed int64) Option {
	return func(o *Options) { o.randomSeed = seed }
}

// WithStartProbPrior sets the Dirichlet pseudocount on start_prob.
// Panics if prior < 1.
func WithStartProbPrior(prior float64) Option {
	if prior < 1 {
		panic(panicPriorInvalid)
	}
	return func(o *Options) { o.startPrior = prior }
}

// WithTransMatPrior sets the Dirichlet pseudocount on trans_mat.
// Panics if prior < 1.
func WithTransMatPrior(prior float64) Option {
	if prior < 1 {
		panic(panicPriorInvalid)
	}
	return func(o *Options) { o.transPrior = prior }
}

// WithMaxWorkers bounds the E-step worker pool size. Panics if n <= 0.
func WithMaxWorkers(n int) Option {
	if n <= 0 {
		panic(panicMaxWorkersInvalid)
	}
	return func(o *Options) { o.maxWorkers = n }
}

func gatherOptions(opts []Option) Options {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
