package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func chartBody(symbol string, price float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":%q,"currency":"USD","regularMarketPrice":%v,"previousClose":%v,"shortName":"Test Co"}}],"error":null}}`,
		symbol, price, price)
}

const chartNotFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func TestCedearGetPrices(t *testing.T) {
	t.Run("fetches_per_ticker", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.Contains(r.URL.Path, "AAPL"):
				w.Write([]byte(chartBody("AAPL", 180.5)))
			case strings.Contains(r.URL.Path, "GGAL"):
				w.Write([]byte(chartBody("GGAL", 42)))
			default:
				w.Write([]byte(chartNotFound))
			}
		}))
		defer server.Close()

		provider := NewCedearProvider(server.Client(), server.URL, NewMemoryCache(), 15*time.Minute)

		prices := provider.GetPrices(context.Background(), []string{"aapl", "GGAL"})
		if !prices["AAPL"].Equal(decimal.NewFromFloat(180.5)) {
			t.Errorf("expected AAPL 180.5, got %s", prices["AAPL"])
		}
		if !prices["GGAL"].Equal(decimal.NewFromInt(42)) {
			t.Errorf("expected GGAL 42, got %s", prices["GGAL"])
		}
	})

	t.Run("failed_ticker_omitted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "AAPL") {
				w.Write([]byte(chartBody("AAPL", 180)))
				return
			}
			w.Write([]byte(chartNotFound))
		}))
		defer server.Close()

		provider := NewCedearProvider(server.Client(), server.URL, NewMemoryCache(), 15*time.Minute)

		prices := provider.GetPrices(context.Background(), []string{"AAPL", "GONE"})
		if _, ok := prices["GONE"]; ok {
			t.Error("expected failed ticker to be omitted")
		}
		if !prices["AAPL"].Equal(decimal.NewFromInt(180)) {
			t.Errorf("expected AAPL 180, got %s", prices["AAPL"])
		}
	})

	t.Run("cached_tickers_not_refetched", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(chartBody("AAPL", 180)))
		}))
		defer server.Close()

		provider := NewCedearProvider(server.Client(), server.URL, NewMemoryCache(), 15*time.Minute)

		provider.GetPrices(context.Background(), []string{"AAPL"})
		provider.GetPrices(context.Background(), []string{"AAPL"})
		if calls != 1 {
			t.Errorf("expected 1 upstream call, got %d", calls)
		}
	})
}

func TestCedearResolve(t *testing.T) {
	t.Run("plain_form", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chartBody("AAPL", 180)))
		}))
		defer server.Close()

		provider := NewCedearProvider(server.Client(), server.URL, NewMemoryCache(), 15*time.Minute)

		quote, err := provider.Resolve(context.Background(), "aapl")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if quote.Symbol != "AAPL" {
			t.Errorf("expected symbol AAPL, got %s", quote.Symbol)
		}
	})

	t.Run("falls_back_to_ba_suffix", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, ".BA") {
				w.Write([]byte(chartBody("YPFD.BA", 25000)))
				return
			}
			w.Write([]byte(chartNotFound))
		}))
		defer server.Close()

		provider := NewCedearProvider(server.Client(), server.URL, NewMemoryCache(), 15*time.Minute)

		quote, err := provider.Resolve(context.Background(), "YPFD")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if quote.Symbol != "YPFD.BA" {
			t.Errorf("expected symbol YPFD.BA, got %s", quote.Symbol)
		}
		if !quote.Price.Equal(decimal.NewFromInt(25000)) {
			t.Errorf("expected price 25000, got %s", quote.Price)
		}
	})

	t.Run("unresolvable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chartNotFound))
		}))
		defer server.Close()

		provider := NewCedearProvider(server.Client(), server.URL, NewMemoryCache(), 15*time.Minute)

		if _, err := provider.Resolve(context.Background(), "NOPE"); err == nil {
			t.Fatal("expected error for unresolvable ticker")
		}
	})
}
