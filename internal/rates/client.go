// Package rates provides the ARS/USD blue-rate cache and currency conversion.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Rate is a buy/sell ARS-per-USD exchange rate. Venta is the sell-side rate
// used for all USD to ARS conversions.
type Rate struct {
	Compra decimal.Decimal `json:"compra"`
	Venta  decimal.Decimal `json:"venta"`
}

// dolarAPIResponse is the dolarapi.com quote payload. Fields beyond the
// buy/sell values are ignored.
type dolarAPIResponse struct {
	Moneda string          `json:"moneda"`
	Casa   string          `json:"casa"`
	Compra decimal.Decimal `json:"compra"`
	Venta  decimal.Decimal `json:"venta"`
}

// Client fetches the current blue rate over HTTP. A single try, no retries.
type Client struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewClient creates a new blue-rate client.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// Fetch performs one HTTP GET against the quote endpoint.
func (c *Client) Fetch(ctx context.Context) (Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Rate{}, fmt.Errorf("building rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Rate{}, fmt.Errorf("rate http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Rate{}, fmt.Errorf("rate request: unexpected status %d", resp.StatusCode)
	}

	var payload dolarAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Rate{}, fmt.Errorf("decoding rate response: %w", err)
	}

	if payload.Venta.IsZero() {
		return Rate{}, fmt.Errorf("invalid venta rate in response")
	}

	return Rate{Compra: payload.Compra, Venta: payload.Venta}, nil
}
