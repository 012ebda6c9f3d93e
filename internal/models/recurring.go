package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringIncome is a template describing a periodic income to be posted
// automatically once per calendar month on DayOfMonth.
// LastProcessedDate is mutated exclusively by the recurring processor.
type RecurringIncome struct {
	Base
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	Name              string          `gorm:"not null" json:"name"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency          Currency        `gorm:"not null" json:"currency"`
	Category          string          `gorm:"not null" json:"category"`
	DayOfMonth        int             `gorm:"not null" json:"day_of_month"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	LastProcessedDate *time.Time      `json:"last_processed_date,omitempty"`
}

// RecurringExpense is the expense counterpart of RecurringIncome. It carries
// an icon that is prefixed to the materialized transaction's description.
type RecurringExpense struct {
	Base
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	Name              string          `gorm:"not null" json:"name"`
	Icon              string          `json:"icon"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency          Currency        `gorm:"not null" json:"currency"`
	Category          string          `gorm:"not null" json:"category"`
	DayOfMonth        int             `gorm:"not null" json:"day_of_month"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	LastProcessedDate *time.Time      `json:"last_processed_date,omitempty"`
}
