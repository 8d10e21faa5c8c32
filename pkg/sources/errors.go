package sources

import "errors"

var (
	// ErrSourceUnavailable indicates the upstream could not be reached at all.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSymbolNotFound indicates the upstream does not know the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrStaleUpstream indicates the upstream returned data without a usable timestamp.
	ErrStaleUpstream = errors.New("stale upstream data")
	// ErrInvalidPrice indicates a non-positive or unparseable price.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrInvalidResponse indicates an invalid response from the source.
	ErrInvalidResponse = errors.New("invalid response")
)
