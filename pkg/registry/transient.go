package registry

import (
	"strings"
	"time"
)

// transientClass describes one known-transient registry failure mode.
// The phrases mirror undocumented upstream behavior, not a stable
// contract, so the table is kept data-driven in one place.
type transientClass struct {
	name   string
	phrase string        // substring matched against the registry response
	base   time.Duration // wait scales linearly: base * attempt
}

var transients = []transientClass{
	// Propagation lag: a freshly-registered asset is not yet ready to
	// accept price pushes. Waits longer than the rate limiter.
	{name: "propagation", phrase: "missing perp", base: 2 * time.Second},
	// Registry-side rate limiting.
	{name: "rate_limit", phrase: "oracle price update too often", base: time.Second},
}

// networkClass covers transport-level failures, which count against the
// same attempt budget as registry transients.
var networkClass = transientClass{name: "network", base: 2 * time.Second}

// classifyTransient matches a registry response against the known
// transient phrases. A miss means the failure is terminal.
func classifyTransient(response string) (transientClass, bool) {
	msg := strings.ToLower(response)
	for _, tc := range transients {
		if strings.Contains(msg, tc.phrase) {
			return tc, true
		}
	}
	return transientClass{}, false
}

// wait returns the delay before the next attempt, linear in the attempt
// number (1-based).
func (tc transientClass) wait(attempt int) time.Duration {
	return tc.base * time.Duration(attempt)
}
