package compose

// Verdict is the result of a staleness check.
type Verdict struct {
	Fresh      bool
	AgeMinutes int64
}

// Gate rejects prices whose contributing quote is older than the
// configured threshold. Pure predicate, no side effects.
type Gate struct {
	MaxAgeMinutes int
}

// Check gates an age in seconds. The boundary is inclusive: a quote aged
// exactly MaxAgeMinutes is still fresh.
func (g Gate) Check(ageSeconds int64) Verdict {
	ageMinutes := ageSeconds / 60
	return Verdict{
		Fresh:      ageMinutes <= int64(g.MaxAgeMinutes),
		AgeMinutes: ageMinutes,
	}
}

// CheckQuote gates a fetch result. A quote carrying an embedded error is
// stale regardless of age.
func (g Gate) CheckQuote(ageSeconds int64, err error) Verdict {
	if err != nil {
		return Verdict{Fresh: false, AgeMinutes: ageSeconds / 60}
	}
	return g.Check(ageSeconds)
}
