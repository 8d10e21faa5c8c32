package feeder

import "time"

// LoopState tracks per-run counters. It is owned exclusively by the loop,
// updated synchronously between cycles, and discarded at shutdown.
type LoopState struct {
	UpdateCount       int
	ErrorCount        int
	ConsecutiveErrors int
	LastSuccessAt     time.Time
	StartedAt         time.Time
}

// record applies one cycle outcome to the counters.
func (s *LoopState) record(outcome Outcome, now time.Time) {
	s.UpdateCount++
	switch outcome {
	case OutcomeSuccess:
		s.ConsecutiveErrors = 0
		s.LastSuccessAt = now
	case OutcomeNoop:
		s.ConsecutiveErrors = 0
	case OutcomeStale, OutcomeError:
		s.ConsecutiveErrors++
		s.ErrorCount++
	}
}

// SuccessRate returns the fraction of cycles that did not fail.
func (s *LoopState) SuccessRate() float64 {
	if s.UpdateCount == 0 {
		return 0
	}
	return float64(s.UpdateCount-s.ErrorCount) / float64(s.UpdateCount)
}
