package models

import "github.com/shopspring/decimal"

// AssetType represents the type of a patrimony asset.
type AssetType string

const (
	AssetTypeCash       AssetType = "cash"
	AssetTypeBank       AssetType = "bank"
	AssetTypeInvestment AssetType = "investment"
	AssetTypeCrypto     AssetType = "crypto"
	AssetTypeCedear     AssetType = "cedear"
	AssetTypeOther      AssetType = "other"
)

// Priced returns true for asset types valued as quantity times a market price
// looked up by ticker. All other types are valued by their flat Amount.
func (t AssetType) Priced() bool {
	return t == AssetTypeCrypto || t == AssetTypeCedear
}

// Asset is a unit of patrimony. Exactly one valuation mode applies per asset,
// selected by Type: flat Amount for cash-like assets, Quantity x market price
// for crypto and CEDEAR holdings.
type Asset struct {
	Base
	UserID   uint            `gorm:"not null;index" json:"user_id"`
	Name     string          `gorm:"not null" json:"name"`
	Type     AssetType       `gorm:"not null" json:"type"`
	Currency Currency        `gorm:"not null" json:"currency"`
	Amount   decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"amount"`

	// Priced instruments only.
	Quantity      decimal.Decimal  `gorm:"type:decimal(20,8);not null;default:0" json:"quantity"`
	Ticker        string           `json:"ticker,omitempty"`
	PurchasePrice *decimal.Decimal `gorm:"type:decimal(20,8)" json:"purchase_price,omitempty"`
}
