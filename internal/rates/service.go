package rates

import (
	"context"
	"errors"
	"time"

	apperrors "billetera/internal/errors"
	"billetera/internal/logger"
	"billetera/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fetcher is the network side of the rate service.
type Fetcher interface {
	Fetch(ctx context.Context) (Rate, error)
}

// Servicer defines the contract for obtaining the current exchange rate.
type Servicer interface {
	GetRate(ctx context.Context) (Rate, error)
}

// service serves the blue rate from a persisted snapshot, refreshing it over
// the network when the snapshot is older than the TTL. A stale snapshot is
// returned only when a live fetch fails; with no snapshot at all the failure
// propagates as ErrRateUnavailable.
type service struct {
	db      *gorm.DB
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
}

// NewService creates a new rate Servicer backed by the given store and fetcher.
func NewService(db *gorm.DB, fetcher Fetcher, ttl time.Duration) Servicer {
	return &service{db: db, fetcher: fetcher, ttl: ttl, now: time.Now}
}

// GetRate returns the current buy/sell rate, serving the cached snapshot
// unchanged while it is fresh.
func (s *service) GetRate(ctx context.Context) (Rate, error) {
	var snap models.RateSnapshot
	cached := true
	if err := s.db.Where("key = ?", models.RateSnapshotKey).First(&snap).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Rate{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		cached = false
	}

	now := s.now()
	if cached && now.Sub(snap.FetchedAt) < s.ttl {
		return Rate{Compra: snap.Compra, Venta: snap.Venta}, nil
	}

	fresh, err := s.fetcher.Fetch(ctx)
	if err != nil {
		if cached {
			logger.Get().Warnw("rate fetch failed, serving stale snapshot",
				"error", err.Error(),
				"fetched_at", snap.FetchedAt,
			)
			return Rate{Compra: snap.Compra, Venta: snap.Venta}, nil
		}
		return Rate{}, apperrors.Wrap(apperrors.ErrRateUnavailable, err)
	}

	snap = models.RateSnapshot{
		Key:       models.RateSnapshotKey,
		Compra:    fresh.Compra,
		Venta:     fresh.Venta,
		FetchedAt: now,
	}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&snap).Error; err != nil {
		// The rate itself is good; a failed snapshot write only costs the cache.
		logger.Get().Warnw("failed to persist rate snapshot", "error", err.Error())
	}

	return fresh, nil
}

// ToARS converts an amount in the given currency to ARS using the venta rate.
// Identity for ARS. No rounding is applied; display rounding is the caller's
// concern.
func ToARS(amount decimal.Decimal, currency models.Currency, rate Rate) decimal.Decimal {
	if currency == models.CurrencyARS {
		return amount
	}
	return amount.Mul(rate.Venta)
}
