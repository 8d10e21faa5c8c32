package spot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources"
)

func TestMid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spot/mid", r.URL.Path)
		assert.Equal(t, "FEUSD", r.URL.Query().Get("base"))
		assert.Equal(t, "USDT0", r.URL.Query().Get("quote"))
		json.NewEncoder(w).Encode(midResponse{Mid: "0.9991", Timestamp: time.Now().Unix() - 30})
	}))
	defer srv.Close()

	c, err := New(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)

	q, err := c.Mid(context.Background(), "FEUSD", "USDT0")
	require.NoError(t, err)

	assert.True(t, q.Price.Equal(decimal.RequireFromString("0.9991")))
	assert.Equal(t, sources.KindSecondaryMarket, q.Kind)
	assert.Equal(t, "FEUSD/USDT0", q.Symbol)
	assert.InDelta(t, 30, q.AgeSeconds(), 2)
}

func TestPairMidByAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pairs/0xfe01/0xusdc", r.URL.Path)
		json.NewEncoder(w).Encode(midResponse{Mid: "0.9987"})
	}))
	defer srv.Close()

	c, err := New(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)

	q, err := c.PairMidByAddress(context.Background(), "0xfe01", "0xusdc")
	require.NoError(t, err)

	assert.True(t, q.Price.Equal(decimal.RequireFromString("0.9987")))
	assert.InDelta(t, 0, q.AgeSeconds(), 2, "missing timestamp defaults to now")
}

func TestMid_UnknownPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)

	_, err = c.Mid(context.Background(), "FEUSD", "NOPE")
	require.ErrorIs(t, err, sources.ErrSymbolNotFound)
}

func TestMid_InvalidMid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(midResponse{Mid: ""})
	}))
	defer srv.Close()

	c, err := New(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)

	_, err = c.Mid(context.Background(), "FEUSD", "USDT0")
	require.ErrorIs(t, err, sources.ErrInvalidResponse)
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New("", 5*time.Second, nil)
	require.ErrorIs(t, err, ErrEndpointRequired)
}
