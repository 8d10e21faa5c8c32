// Package chain implements the on-chain data-feed contract source.
//
// The contract stores one value and one timestamp per feed, addressed by
// a bytes32 feed identifier that is the keccak256 hash of the symbol
// string. Values are fixed-point integers scaled by 10^8.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/logging"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/metrics"
	"github.com/Hugo-SEQUIER/hl-hip3-deploy/pkg/sources"
)

const sourceName = "chain"

// priceScale is the fixed exponent of the contract's integer values (10^-8).
const priceScale = -8

// Data-feed contract ABI (only the two view functions we read).
const feedABIJSON = `[{
	"inputs": [{"internalType": "bytes32", "name": "dataFeedId", "type": "bytes32"}],
	"name": "getValueForDataFeed",
	"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
	"stateMutability": "view",
	"type": "function"
}, {
	"inputs": [{"internalType": "bytes32", "name": "dataFeedId", "type": "bytes32"}],
	"name": "getTimestampForDataFeed",
	"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
	"stateMutability": "view",
	"type": "function"
}]`

// Source reads prices from the data-feed contract over an EVM RPC endpoint.
type Source struct {
	client   *ethclient.Client
	rpcURL   string
	contract common.Address
	chainID  uint64
	feedABI  abi.ABI
	symbols  map[string]string // unified symbol -> contract feed name
	logger   *logging.Logger
}

// New creates a chain source. symbols maps unified symbols to contract
// feed names; symbols without an entry hash as-is. Initialize must be
// called before Fetch.
func New(rpcURL, contract string, chainID uint64, symbols map[string]string, logger *logging.Logger) (*Source, error) {
	if rpcURL == "" {
		return nil, ErrRPCURLRequired
	}
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContractAddress, contract)
	}

	feedABI, err := abi.JSON(strings.NewReader(feedABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed ABI: %w", err)
	}

	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	return &Source{
		rpcURL:   rpcURL,
		contract: common.HexToAddress(contract),
		chainID:  chainID,
		feedABI:  feedABI,
		symbols:  symbols,
		logger:   logger,
	}, nil
}

// Initialize connects to the EVM RPC endpoint.
func (s *Source) Initialize(ctx context.Context) error {
	client, err := ethclient.DialContext(ctx, s.rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}
	s.client = client
	return nil
}

// Close releases the RPC connection.
func (s *Source) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Name returns the source name.
func (s *Source) Name() string {
	return sourceName
}

// Kind returns the upstream class.
func (s *Source) Kind() sources.Kind {
	return sources.KindOnchainContract
}

// DataFeedID derives the bytes32 feed identifier for a symbol.
func DataFeedID(symbol string) common.Hash {
	return crypto.Keccak256Hash([]byte(symbol))
}

// Fetch reads value and timestamp for each symbol's feed. Each symbol is an
// independent pair of view calls; a symbol whose feed was never written is
// left out of the result rather than failing the batch.
func (s *Source) Fetch(ctx context.Context, symbols []string) (map[string]sources.Quote, error) {
	if s.client == nil {
		return nil, ErrClientNotInitialized
	}

	quotes := make(map[string]sources.Quote, len(symbols))
	var lastErr error
	for _, symbol := range symbols {
		quote, err := s.fetchOne(ctx, symbol)
		if err != nil {
			lastErr = err
			s.logger.Warn("Feed read failed", "symbol", symbol, "error", err)
			metrics.RecordSourceError(sourceName)
			continue
		}
		quotes[symbol] = quote
		metrics.RecordSourceFetch(sourceName, symbol)
	}

	if len(quotes) == 0 && lastErr != nil {
		return nil, fmt.Errorf("%w: %w", sources.ErrSourceUnavailable, lastErr)
	}
	return quotes, nil
}

func (s *Source) fetchOne(ctx context.Context, symbol string) (sources.Quote, error) {
	feedSymbol := symbol
	if mapped, ok := s.symbols[symbol]; ok {
		feedSymbol = mapped
	}
	feedID := DataFeedID(feedSymbol)

	raw, err := s.callUint(ctx, "getValueForDataFeed", feedID)
	if err != nil {
		return sources.Quote{}, fmt.Errorf("value read: %w", err)
	}
	if raw.Sign() == 0 {
		// The contract returns zero for feeds that were never written
		return sources.Quote{}, fmt.Errorf("%w: feed %s empty", sources.ErrSymbolNotFound, symbol)
	}

	ts, err := s.callUint(ctx, "getTimestampForDataFeed", feedID)
	if err != nil {
		return sources.Quote{}, fmt.Errorf("timestamp read: %w", err)
	}
	if ts.Sign() == 0 {
		return sources.Quote{}, fmt.Errorf("%w: feed %s has no timestamp", sources.ErrStaleUpstream, symbol)
	}

	price := decimal.NewFromBigInt(raw, priceScale)
	observedAt := time.Unix(ts.Int64(), 0)

	return sources.NewQuote(symbol, price, sources.KindOnchainContract, sourceName, observedAt)
}

// callUint performs one ABI-packed view call returning a single uint256.
func (s *Source) callUint(ctx context.Context, method string, feedID common.Hash) (*big.Int, error) {
	data, err := s.feedABI.Pack(method, [32]byte(feedID))
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	result, err := s.client.CallContract(ctx, ethereum.CallMsg{
		To:   &s.contract,
		Data: data,
	}, nil) // nil = latest block
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	values, err := s.feedABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d values", sources.ErrInvalidResponse, method, len(values))
	}
	out, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T", sources.ErrInvalidResponse, method, values[0])
	}
	return out, nil
}
