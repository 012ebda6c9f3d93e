package models

import "github.com/shopspring/decimal"

// Shortcut is a one-tap expense template (name, icon, preset amount) shown on
// the quick-entry surface, ordered by SortOrder.
type Shortcut struct {
	Base
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	Name      string          `gorm:"not null" json:"name"`
	Icon      string          `json:"icon"`
	Category  string          `gorm:"not null" json:"category"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency  Currency        `gorm:"not null" json:"currency"`
	SortOrder int             `gorm:"not null;default:0" json:"sort_order"`
}
