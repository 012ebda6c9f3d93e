package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Transactions      []Transaction      `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	RecurringIncomes  []RecurringIncome  `gorm:"foreignKey:UserID" json:"recurring_incomes,omitempty"`
	RecurringExpenses []RecurringExpense `gorm:"foreignKey:UserID" json:"recurring_expenses,omitempty"`
	Assets            []Asset            `gorm:"foreignKey:UserID" json:"assets,omitempty"`
	Budgets           []Budget           `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
	Shortcuts         []Shortcut         `gorm:"foreignKey:UserID" json:"shortcuts,omitempty"`
}
