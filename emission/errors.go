package emission

import (
	"fmt"

	"github.com/katalvlaran/gohmm/errs"
)

// ErrUnknownLetter indicates a params/init_params mask contained a letter
// not recognised by the family it was passed to. It wraps
// errs.ErrInvalidOption.
var ErrUnknownLetter = fmt.Errorf("emission: unrecognised params/init_params letter: %w", errs.ErrInvalidOption)

// ErrUnknownCovarianceType indicates a covariance_type string outside
// {spherical, diag, full, tied}. It wraps errs.ErrInvalidOption.
var ErrUnknownCovarianceType = fmt.Errorf("emission: unknown covariance_type: %w", errs.ErrInvalidOption)
