package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources"
)

const testContract = "0x4200000000000000000000000000000000000006"

func TestNew_Validation(t *testing.T) {
	_, err := New("", testContract, 998, nil, nil)
	require.ErrorIs(t, err, ErrRPCURLRequired)

	_, err = New("https://rpc.example.org", "not-an-address", 998, nil, nil)
	require.ErrorIs(t, err, ErrInvalidContractAddress)
}

func TestDataFeedID(t *testing.T) {
	want := crypto.Keccak256Hash([]byte("BTC-FEUSD"))
	assert.Equal(t, want, DataFeedID("BTC-FEUSD"))
	assert.NotEqual(t, DataFeedID("BTC-FEUSD"), DataFeedID("BTC-USDT0"),
		"distinct symbols must map to distinct feed identifiers")
}

func TestFetch_RequiresInitialize(t *testing.T) {
	s, err := New("https://rpc.example.org", "0x4200000000000000000000000000000000000006", 998, nil, nil)
	require.NoError(t, err)

	_, err = sources.FetchOne(context.Background(), s, "BTC")
	require.ErrorIs(t, err, ErrClientNotInitialized)
}

func TestPriceScale(t *testing.T) {
	// 11768820700000 at 10^-8 is 117688.207
	raw := big.NewInt(11768820700000)
	px := decimal.NewFromBigInt(raw, priceScale)
	assert.Equal(t, "117688.207", px.String())
}
