package compose

import "errors"

var (
	// ErrUnsupportedPair indicates a pair outside the configured base asset.
	ErrUnsupportedPair = errors.New("unsupported pair")
	// ErrFactorMismatch indicates an FX factor applied to the wrong quote symbol.
	ErrFactorMismatch = errors.New("fx factor symbol mismatch")
)
