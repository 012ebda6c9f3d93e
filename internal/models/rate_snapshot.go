package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshotKey identifies the single cached blue-rate row.
const RateSnapshotKey = "dolar-blue"

// RateSnapshot is the persisted exchange-rate cache. A snapshot is fresh only
// while now - FetchedAt is within the configured TTL; a stale snapshot is
// served solely as a fallback when a live fetch fails.
type RateSnapshot struct {
	Key       string          `gorm:"primaryKey" json:"key"`
	Compra    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"compra"`
	Venta     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"venta"`
	FetchedAt time.Time       `gorm:"not null" json:"fetched_at"`
}
