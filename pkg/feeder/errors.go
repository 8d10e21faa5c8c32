package feeder

import "errors"

var (
	// ErrTooManyFailures indicates the consecutive-error ceiling was
	// reached; the loop halts rather than retrying.
	ErrTooManyFailures = errors.New("too many consecutive failures")
	// ErrNoSourcesConfigured indicates the loop has no base price source.
	ErrNoSourcesConfigured = errors.New("no price sources configured")
)
