package compose

import (
	"errors"
	"testing"
)

func TestGateCheck(t *testing.T) {
	gate := Gate{MaxAgeMinutes: 30}

	tests := []struct {
		name       string
		ageSeconds int64
		fresh      bool
	}{
		{"zero age", 0, true},
		{"well within threshold", 5 * 60, true},
		{"exactly at threshold", 30 * 60, true},
		{"just under next minute", 30*60 + 59, true},
		{"one minute past threshold", 31 * 60, false},
		{"far past threshold", 24 * 60 * 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := gate.Check(tt.ageSeconds)
			if v.Fresh != tt.fresh {
				t.Errorf("Check(%d): fresh = %v, want %v", tt.ageSeconds, v.Fresh, tt.fresh)
			}
			if v.AgeMinutes != tt.ageSeconds/60 {
				t.Errorf("Check(%d): age minutes = %d, want %d", tt.ageSeconds, v.AgeMinutes, tt.ageSeconds/60)
			}
		})
	}
}

func TestGateCheckQuote_ErrorIsAlwaysStale(t *testing.T) {
	gate := Gate{MaxAgeMinutes: 30}

	v := gate.CheckQuote(0, errors.New("upstream timestamp missing"))
	if v.Fresh {
		t.Error("quote with embedded error must be stale regardless of age")
	}

	v = gate.CheckQuote(60, nil)
	if !v.Fresh {
		t.Error("fresh quote without error must pass the gate")
	}
}
