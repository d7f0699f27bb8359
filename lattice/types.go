package lattice

// Implementation selects which numerically equivalent recurrence the
// lattice engine uses. Both must agree within 1e-8 on well-conditioned
// reference scenarios; Log is the default since it composes naturally with
// log-space emission likelihoods.
type Implementation int

const (
	// LogImplementation runs Forward/Backward/Viterbi entirely in log space.
	LogImplementation Implementation = iota

	// ScalingImplementation runs ForwardScaling/BackwardScaling in
	// probability space with per-time normalisation.
	ScalingImplementation
)

// String renders the Implementation for logs and error messages.
func (i Implementation) String() string {
	switch i {
	case LogImplementation:
		return "log"
	case ScalingImplementation:
		return "scaling"
	default:
		return "unknown"
	}
}
