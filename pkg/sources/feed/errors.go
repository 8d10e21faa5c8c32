package feed

import "errors"

var (
	// ErrNoMirrorsConfigured indicates that no feed mirror URLs were configured.
	ErrNoMirrorsConfigured = errors.New("no feed mirrors configured")
)
