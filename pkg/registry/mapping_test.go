package registry

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMapping(t *testing.T) {
	prices := map[string]decimal.Decimal{
		"BTC-FEUSD": decimal.RequireFromString("65234.123456789012"),
		"BTC-USDT0": decimal.RequireFromString("65100"),
	}

	m := BuildMapping("btcx", prices)

	require.Len(t, m, 2)
	assert.Equal(t, "65234.123456789012", m["btcx:BTC-FEUSD"])
	assert.Equal(t, "65100.000000000000", m["btcx:BTC-USDT0"])
}

func TestBuildMapping_TruncatesBeyondFixedPrecision(t *testing.T) {
	prices := map[string]decimal.Decimal{
		// One third never terminates; the serialized form must be exactly
		// twelve fractional digits.
		"BTC-FEUSD": decimal.NewFromInt(100000).Div(decimal.NewFromInt(3)),
	}

	m := BuildMapping("btcx", prices)

	got := m["btcx:BTC-FEUSD"]
	require.Contains(t, got, ".")
	frac := got[len(got)-12:]
	assert.NotContains(t, frac, ".", "expected 12 fractional digits, got %q", got)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "btcx:BTC-FEUSD", Key("btcx", "BTC-FEUSD"))
}
