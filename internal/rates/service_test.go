package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"billetera/internal/models"
	"billetera/internal/testutil"
)

type fakeFetcher struct {
	rate  Rate
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context) (Rate, error) {
	f.calls++
	if f.err != nil {
		return Rate{}, f.err
	}
	return f.rate, nil
}

func blueRate(compra, venta int64) Rate {
	return Rate{Compra: decimal.NewFromInt(compra), Venta: decimal.NewFromInt(venta)}
}

func TestGetRate(t *testing.T) {
	t.Run("fresh_snapshot_skips_fetch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		testutil.CreateTestRateSnapshot(t, db, decimal.NewFromInt(980), decimal.NewFromInt(1000), now.Add(-30*time.Minute))

		fetcher := &fakeFetcher{rate: blueRate(1180, 1200)}
		svc := &service{db: db, fetcher: fetcher, ttl: time.Hour, now: func() time.Time { return now }}

		rate, err := svc.GetRate(context.Background())
		testutil.AssertNoError(t, err)

		if !rate.Venta.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected cached venta 1000, got %s", rate.Venta)
		}
		if fetcher.calls != 0 {
			t.Errorf("expected no fetch while snapshot is fresh, got %d calls", fetcher.calls)
		}
	})

	t.Run("expired_snapshot_refreshes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		testutil.CreateTestRateSnapshot(t, db, decimal.NewFromInt(980), decimal.NewFromInt(1000), now.Add(-2*time.Hour))

		fetcher := &fakeFetcher{rate: blueRate(1180, 1200)}
		svc := &service{db: db, fetcher: fetcher, ttl: time.Hour, now: func() time.Time { return now }}

		rate, err := svc.GetRate(context.Background())
		testutil.AssertNoError(t, err)

		if !rate.Venta.Equal(decimal.NewFromInt(1200)) {
			t.Errorf("expected refreshed venta 1200, got %s", rate.Venta)
		}
		if fetcher.calls != 1 {
			t.Errorf("expected exactly one fetch, got %d", fetcher.calls)
		}

		// The refreshed rate must be persisted for the next call.
		var snap models.RateSnapshot
		if err := db.Where("key = ?", models.RateSnapshotKey).First(&snap).Error; err != nil {
			t.Fatalf("expected persisted snapshot: %v", err)
		}
		if !snap.Venta.Equal(decimal.NewFromInt(1200)) {
			t.Errorf("expected persisted venta 1200, got %s", snap.Venta)
		}
		if !snap.FetchedAt.Equal(now) {
			t.Errorf("expected fetched_at %s, got %s", now, snap.FetchedAt)
		}
	})

	t.Run("fetch_failure_serves_stale", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		testutil.CreateTestRateSnapshot(t, db, decimal.NewFromInt(980), decimal.NewFromInt(1000), now.Add(-48*time.Hour))

		fetcher := &fakeFetcher{err: errors.New("upstream down")}
		svc := &service{db: db, fetcher: fetcher, ttl: time.Hour, now: func() time.Time { return now }}

		rate, err := svc.GetRate(context.Background())
		testutil.AssertNoError(t, err)

		if !rate.Venta.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected stale venta 1000, got %s", rate.Venta)
		}
	})

	t.Run("fetch_failure_without_snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		fetcher := &fakeFetcher{err: errors.New("upstream down")}
		svc := &service{db: db, fetcher: fetcher, ttl: time.Hour, now: time.Now}

		_, err := svc.GetRate(context.Background())
		testutil.AssertAppError(t, err, "RATE_UNAVAILABLE")
	})
}

func TestToARS(t *testing.T) {
	rate := blueRate(980, 1000)

	ars := ToARS(decimal.NewFromInt(500), models.CurrencyARS, rate)
	if !ars.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected ARS identity 500, got %s", ars)
	}

	converted := ToARS(decimal.NewFromInt(100), models.CurrencyUSD, rate)
	if !converted.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected 100 USD at venta 1000 to be 100000 ARS, got %s", converted)
	}
}
