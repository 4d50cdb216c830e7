package raptor

import (
	"github.com/pkg/errors"

	"github.com/transitcore/rangeraptor/transit"
)

// ErrInvalidRequest wraps any failure of Request.Validate.
var ErrInvalidRequest = errors.New("invalid request")

// ErrAdapterContract re-exports transit.ErrAdapterContract at the public
// API surface (§7): a Provider violating its contract — an out-of-range
// transfer target, a calendar predicate that panics, or trips out of order
// within a pattern — is fatal and
// propagates here rather than being swallowed into a partial result.
var ErrAdapterContract = transit.ErrAdapterContract
