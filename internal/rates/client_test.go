package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestClientFetch(t *testing.T) {
	t.Run("parses_quote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"moneda":"USD","casa":"blue","nombre":"Blue","compra":1175,"venta":1195,"fechaActualizacion":"2025-06-15T12:00:00.000Z"}`))
		}))
		defer server.Close()

		client := NewClient(server.Client(), server.URL)
		rate, err := client.Fetch(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !rate.Compra.Equal(decimal.NewFromInt(1175)) {
			t.Errorf("expected compra 1175, got %s", rate.Compra)
		}
		if !rate.Venta.Equal(decimal.NewFromInt(1195)) {
			t.Errorf("expected venta 1195, got %s", rate.Venta)
		}
	})

	t.Run("non_200_status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.Client(), server.URL)
		if _, err := client.Fetch(context.Background()); err == nil {
			t.Fatal("expected error on 502 response")
		}
	})

	t.Run("zero_venta_rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"compra":0,"venta":0}`))
		}))
		defer server.Close()

		client := NewClient(server.Client(), server.URL)
		if _, err := client.Fetch(context.Background()); err == nil {
			t.Fatal("expected error on zero venta")
		}
	})

	t.Run("malformed_body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := NewClient(server.Client(), server.URL)
		if _, err := client.Fetch(context.Background()); err == nil {
			t.Fatal("expected error on malformed body")
		}
	})
}
