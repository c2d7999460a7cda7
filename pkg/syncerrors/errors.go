package syncerrors

import "errors"

var (
	// ErrInvalidArgument indicates a constructor or operation received an
	// argument outside its contract.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed indicates an operation on a closed primitive.
	ErrClosed = errors.New("closed")

	// ErrInvariant indicates an internal consistency fault. Seeing it means
	// the implementation is broken, not that the caller misbehaved.
	ErrInvariant = errors.New("invariant violated")

	// ErrCountUnderflow indicates a counter was decremented more times than
	// it was configured for.
	ErrCountUnderflow = errors.New("count underflow")

	// ErrScenarioFailed indicates a verification scenario observed a result
	// other than the expected one.
	ErrScenarioFailed = errors.New("scenario failed")

	// ErrUnknownScenario indicates a scenario name that is not registered.
	ErrUnknownScenario = errors.New("unknown scenario")
)
