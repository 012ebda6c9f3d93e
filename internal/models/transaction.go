package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents an entry in the ledger. AmountARS is converted from
// the original currency at creation time and persisted as-is; it is never
// recomputed when the exchange rate moves later.
type Transaction struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency    Currency        `gorm:"not null" json:"currency"`
	AmountARS   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_ars"`
	Category    string          `gorm:"not null" json:"category"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	// ExchangeRateUsed records the venta rate applied at creation, for audit.
	// Only set when Currency is USD.
	ExchangeRateUsed *decimal.Decimal `gorm:"type:decimal(15,2)" json:"exchange_rate_used,omitempty"`

	// Set by the recurring processor when this entry was materialized from a
	// recurring income definition.
	IsRecurring       bool  `gorm:"default:false" json:"is_recurring"`
	RecurringIncomeID *uint `json:"recurring_income_id,omitempty"`
}
