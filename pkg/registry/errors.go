package registry

import "errors"

var (
	// ErrEndpointRequired indicates a missing registry endpoint.
	ErrEndpointRequired = errors.New("registry endpoint is required")
	// ErrRegistryTerminal indicates a registry rejection outside the
	// known-transient classes; it is not retried.
	ErrRegistryTerminal = errors.New("registry rejected publish")
	// ErrAttemptsExhausted indicates the attempt budget ran out while the
	// registry was still reporting a transient condition.
	ErrAttemptsExhausted = errors.New("publish attempts exhausted")
)
