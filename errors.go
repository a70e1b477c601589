package fidimag

import "errors"

var (
	// ErrInvalidArgument is returned when buffer sizes, extents or parameters are inconsistent.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDegenerateState is returned when a state or force becomes non finite.
	ErrDegenerateState = errors.New("degenerate state")
	// ErrNotConverged is returned when a relaxation exhausts its iterations.
	ErrNotConverged = errors.New("not converged")
)
