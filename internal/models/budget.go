package models

import "github.com/shopspring/decimal"

// Budget represents a monthly spending cap for an expense category.
type Budget struct {
	Base
	UserID   uint            `gorm:"not null;index" json:"user_id"`
	Category string          `gorm:"not null" json:"category"`
	Amount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency Currency        `gorm:"not null" json:"currency"`
	IsActive bool            `gorm:"default:true" json:"is_active"`
}
