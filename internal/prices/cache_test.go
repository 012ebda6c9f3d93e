package prices

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	got, err := cache.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil snapshot for missing key")
	}

	snap := &snapshot{
		Prices:    map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50000)},
		FetchedAt: time.Now(),
	}
	if err := cache.Set(ctx, "crypto", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err = cache.Get(ctx, "crypto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot")
	}
	if !got.Prices["BTC"].Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected BTC 50000, got %s", got.Prices["BTC"])
	}
}

func TestMemoryCacheRetention(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	old := &snapshot{
		Prices:    map[string]decimal.Decimal{"BTC": decimal.NewFromInt(1)},
		FetchedAt: time.Now().Add(-25 * time.Hour),
	}
	if err := cache.Set(ctx, "crypto", old); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cache.Get(ctx, "crypto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected snapshot past retention to be dropped")
	}
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client)
	ctx := context.Background()

	got, err := cache.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil snapshot for missing key")
	}

	fetchedAt := time.Now().UTC().Truncate(time.Second)
	snap := &snapshot{
		Prices: map[string]decimal.Decimal{
			"BTC":  decimal.NewFromInt(50000),
			"AAPL": decimal.NewFromFloat(180.5),
		},
		FetchedAt: fetchedAt,
	}
	if err := cache.Set(ctx, "crypto", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err = cache.Get(ctx, "crypto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot")
	}
	if !got.Prices["AAPL"].Equal(decimal.NewFromFloat(180.5)) {
		t.Errorf("expected AAPL 180.5, got %s", got.Prices["AAPL"])
	}
	if !got.FetchedAt.Equal(fetchedAt) {
		t.Errorf("expected fetched_at %s, got %s", fetchedAt, got.FetchedAt)
	}
}
