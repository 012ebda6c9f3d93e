package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"billetera/internal/logger"

	"github.com/shopspring/decimal"
)

const (
	cedearCacheKey = "cedear-prices"
	yahooUA        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

// yahooChartResponse is the Yahoo Finance chart API payload, reduced to the
// meta fields this provider reads.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string          `json:"symbol"`
				Currency           string          `json:"currency"`
				RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
				PreviousClose      decimal.Decimal `json:"previousClose"`
				ShortName          string          `json:"shortName"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// TickerQuote is a resolved CEDEAR/stock quote.
type TickerQuote struct {
	Symbol   string
	Name     string
	Price    decimal.Decimal
	Currency string
}

// CedearProvider fetches CEDEAR and stock prices from the Yahoo Finance chart
// API, one ticker per request. A lookup tries the plain (foreign) ticker form
// first and falls back to the Buenos Aires ".BA" suffix. Failed lookups are
// omitted from the result, degrading to a zero price downstream.
type CedearProvider struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	cache      Cache
	ttl        time.Duration
}

// NewCedearProvider creates a new Yahoo-backed CEDEAR price provider.
func NewCedearProvider(httpClient *http.Client, baseURL string, cache Cache, ttl time.Duration) *CedearProvider {
	return &CedearProvider{httpClient: httpClient, baseURL: baseURL, cache: cache, ttl: ttl}
}

// GetPrices returns prices keyed by upper-cased ticker. Tickers already
// cached within the TTL are not re-fetched.
func (p *CedearProvider) GetPrices(ctx context.Context, symbols []string) map[string]decimal.Decimal {
	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}
	}

	cached, err := p.cache.Get(ctx, cedearCacheKey)
	if err != nil {
		logger.Get().Warnw("cedear price cache read failed", "error", err.Error())
		cached = nil
	}

	fresh := cached != nil && time.Since(cached.FetchedAt) < p.ttl
	if fresh && covers(cached.Prices, upperAll(symbols)) {
		return cached.Prices
	}

	prices := make(map[string]decimal.Decimal)
	if cached != nil {
		for k, v := range cached.Prices {
			prices[k] = v
		}
	}

	for _, symbol := range symbols {
		ticker := strings.ToUpper(symbol)
		if fresh {
			if _, ok := prices[ticker]; ok {
				continue
			}
		}
		quote, err := p.fetchQuote(ctx, ticker)
		if err != nil {
			logger.Get().Warnw("cedear price fetch failed", "ticker", ticker, "error", err.Error())
			continue
		}
		prices[ticker] = quote.Price
	}

	if err := p.cache.Set(ctx, cedearCacheKey, &snapshot{Prices: prices, FetchedAt: time.Now()}); err != nil {
		logger.Get().Warnw("cedear price cache write failed", "error", err.Error())
	}

	return prices
}

// Resolve validates a ticker and returns its quote, trying the plain form
// first and then the local-market ".BA" suffix.
func (p *CedearProvider) Resolve(ctx context.Context, symbol string) (*TickerQuote, error) {
	base := strings.TrimSuffix(strings.ToUpper(symbol), ".BA")

	quote, err := p.fetchQuote(ctx, base)
	if err == nil {
		return quote, nil
	}

	return p.fetchQuote(ctx, base+".BA")
}

// fetchQuote performs one GET against the chart endpoint for a single ticker.
func (p *CedearProvider) fetchQuote(ctx context.Context, ticker string) (*TickerQuote, error) {
	endpoint := p.baseURL + "/" + ticker + "?interval=1d&range=1d"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building chart request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUA)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart http request for %s: %w", ticker, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request for %s: unexpected status %d", ticker, resp.StatusCode)
	}

	var chartResp yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartResp); err != nil {
		return nil, fmt.Errorf("decoding chart response for %s: %w", ticker, err)
	}

	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s: %s", ticker, chartResp.Chart.Error.Code, chartResp.Chart.Error.Description)
	}

	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart results for %s", ticker)
	}

	meta := chartResp.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	if price.IsZero() {
		price = meta.PreviousClose
	}

	name := meta.ShortName
	if name == "" {
		name = ticker
	}
	currency := meta.Currency
	if currency == "" {
		currency = "USD"
	}

	return &TickerQuote{Symbol: ticker, Name: name, Price: price, Currency: currency}, nil
}

func upperAll(symbols []string) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = strings.ToUpper(s)
	}
	return out
}
