package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"billetera/internal/logger"

	"github.com/shopspring/decimal"
)

const cryptoCacheKey = "crypto-prices"

// symbolToID maps common ticker symbols to CoinGecko coin ids. Unknown
// symbols are passed through lowercased, which works when the user already
// entered a coin id.
var symbolToID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"DOGE":  "dogecoin",
	"XRP":   "ripple",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"AVAX":  "avalanche-2",
	"ATOM":  "cosmos",
	"LTC":   "litecoin",
}

// SymbolToID converts a ticker symbol or coin id to a CoinGecko coin id.
func SymbolToID(symbolOrID string) string {
	if id, ok := symbolToID[strings.ToUpper(symbolOrID)]; ok {
		return id
	}
	return strings.ToLower(symbolOrID)
}

// CryptoProvider fetches USD crypto prices from CoinGecko's simple/price
// endpoint, caching results for a short TTL. Price lookups never fail the
// caller: an unknown or unavailable price is reported as zero.
type CryptoProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	cache      Cache
	ttl        time.Duration
}

// NewCryptoProvider creates a new CoinGecko price provider.
func NewCryptoProvider(httpClient *http.Client, baseURL string, cache Cache, ttl time.Duration) *CryptoProvider {
	return &CryptoProvider{httpClient: httpClient, baseURL: baseURL, cache: cache, ttl: ttl}
}

// GetPrices returns USD prices keyed by the tickers given. Missing entries
// come back as zero. On fetch failure the last cached prices are served, or
// an empty map when there is no cache.
func (p *CryptoProvider) GetPrices(ctx context.Context, tickers []string) map[string]decimal.Decimal {
	if len(tickers) == 0 {
		return map[string]decimal.Decimal{}
	}

	cached, err := p.cache.Get(ctx, cryptoCacheKey)
	if err != nil {
		logger.Get().Warnw("crypto price cache read failed", "error", err.Error())
		cached = nil
	}

	if cached != nil && time.Since(cached.FetchedAt) < p.ttl && covers(cached.Prices, tickers) {
		return cached.Prices
	}

	// Map tickers to unique CoinGecko ids.
	tickerToID := make(map[string]string, len(tickers))
	idSet := make(map[string]struct{}, len(tickers))
	ids := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		id := SymbolToID(ticker)
		tickerToID[ticker] = id
		if _, seen := idSet[id]; !seen {
			idSet[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	fetched, err := p.fetch(ctx, ids)
	if err != nil {
		logger.Get().Warnw("crypto price fetch failed", "error", err.Error())
		if cached != nil {
			return cached.Prices
		}
		return map[string]decimal.Decimal{}
	}

	prices := make(map[string]decimal.Decimal, len(tickers))
	for ticker, id := range tickerToID {
		prices[ticker] = fetched[id] // zero value when the id is unknown
	}

	// Merge into the existing cache so tickers from earlier calls survive.
	merged := prices
	if cached != nil {
		merged = make(map[string]decimal.Decimal, len(cached.Prices)+len(prices))
		for k, v := range cached.Prices {
			merged[k] = v
		}
		for k, v := range prices {
			merged[k] = v
		}
	}
	if err := p.cache.Set(ctx, cryptoCacheKey, &snapshot{Prices: merged, FetchedAt: time.Now()}); err != nil {
		logger.Get().Warnw("crypto price cache write failed", "error", err.Error())
	}

	return merged
}

// fetch performs one GET against simple/price for the given coin ids.
func (p *CryptoProvider) fetch(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	endpoint := p.baseURL + "/simple/price?ids=" + url.QueryEscape(strings.Join(ids, ",")) + "&vs_currencies=usd"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building crypto price request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crypto price http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crypto price request: unexpected status %d", resp.StatusCode)
	}

	var payload map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding crypto price response: %w", err)
	}

	out := make(map[string]decimal.Decimal, len(payload))
	for id, quote := range payload {
		out[id] = quote["usd"]
	}
	return out, nil
}

// covers reports whether every ticker has an entry in the price map.
func covers(prices map[string]decimal.Decimal, tickers []string) bool {
	for _, t := range tickers {
		if _, ok := prices[t]; !ok {
			return false
		}
	}
	return true
}
