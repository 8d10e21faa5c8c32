package registry

import (
	"github.com/shopspring/decimal"
)

// priceDecimals is the fixed serialization precision for oracle prices.
// 12 places avoids registry-side rounding ambiguity.
const priceDecimals = 12

// Mapping maps namespace-qualified pair keys to fixed-precision price
// strings. A mapping is built fresh for each publish call and never
// mutated after construction.
type Mapping map[string]string

// Key qualifies a pair identifier with its registry namespace.
func Key(namespace, pairID string) string {
	return namespace + ":" + pairID
}

// BuildMapping converts composed prices into a publishable mapping.
// {"BTC-FEUSD": 65234.12} becomes {"btcx:BTC-FEUSD": "65234.120000000000"}.
func BuildMapping(namespace string, prices map[string]decimal.Decimal) Mapping {
	m := make(Mapping, len(prices))
	for pairID, px := range prices {
		m[Key(namespace, pairID)] = px.StringFixed(priceDecimals)
	}
	return m
}
