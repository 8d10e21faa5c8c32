package spot

import "errors"

var (
	// ErrEndpointRequired indicates a missing aggregator endpoint.
	ErrEndpointRequired = errors.New("spot endpoint is required")
)
