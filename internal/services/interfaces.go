package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"billetera/internal/models"
	"billetera/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Month    *int // 1-12, requires Year
	Year     *int
	Type     *models.TransactionType
	Category *string
}

// TransactionInput carries the user-supplied fields of a ledger entry.
type TransactionInput struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	Currency    models.Currency
	Category    string
	Description string
	Date        time.Time
}

// CategoryTotal is one category's ARS total within a summary period.
type CategoryTotal struct {
	Category string          `json:"category"`
	TotalARS decimal.Decimal `json:"total_ars"`
}

// MonthlySummary aggregates a calendar month of ledger activity in ARS.
type MonthlySummary struct {
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	IncomeARS  decimal.Decimal `json:"income_ars"`
	ExpenseARS decimal.Decimal `json:"expense_ars"`
	BalanceARS decimal.Decimal `json:"balance_ars"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// TransactionServicer defines the contract for ledger business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID uint, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID uint, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	MonthlySummary(userID uint, month, year int) (*MonthlySummary, error)
}

// RecurringKind selects between income and expense recurring definitions.
type RecurringKind string

const (
	RecurringKindIncome  RecurringKind = "income"
	RecurringKindExpense RecurringKind = "expense"
)

// RecurringInput carries the user-supplied fields of a recurring definition.
type RecurringInput struct {
	Name       string
	Icon       string // expenses only
	Amount     decimal.Decimal
	Currency   models.Currency
	Category   string
	DayOfMonth int
	IsActive   bool
}

// RecurringServicer defines the contract for recurring definitions and their
// monthly materialization into ledger transactions.
type RecurringServicer interface {
	CreateIncome(userID uint, input RecurringInput) (*models.RecurringIncome, error)
	UpdateIncome(userID, id uint, input RecurringInput) (*models.RecurringIncome, error)
	DeleteIncome(userID, id uint) error
	GetIncomes(userID uint) ([]models.RecurringIncome, error)

	CreateExpense(userID uint, input RecurringInput) (*models.RecurringExpense, error)
	UpdateExpense(userID, id uint, input RecurringInput) (*models.RecurringExpense, error)
	DeleteExpense(userID, id uint) error
	GetExpenses(userID uint) ([]models.RecurringExpense, error)

	// ProcessRecurring materializes every active definition of the given kind
	// whose day-of-month equals asOf's and which has not yet posted this
	// calendar month. Returns the number of transactions created.
	ProcessRecurring(ctx context.Context, userID uint, kind RecurringKind, asOf time.Time) (int, error)
}

// AssetInput carries the user-supplied fields of an asset.
type AssetInput struct {
	Name          string
	Type          models.AssetType
	Currency      models.Currency
	Amount        decimal.Decimal
	Quantity      decimal.Decimal
	Ticker        string
	PurchasePrice *decimal.Decimal
}

// AssetValuation is one asset's contribution to the patrimony summary.
type AssetValuation struct {
	AssetID  uint             `json:"asset_id"`
	Name     string           `json:"name"`
	Type     models.AssetType `json:"type"`
	Currency models.Currency  `json:"currency"`
	Value    decimal.Decimal  `json:"value"`
	Gain     *decimal.Decimal `json:"gain,omitempty"`
}

// AssetSummary is the unified patrimony valuation.
type AssetSummary struct {
	TotalARS        decimal.Decimal  `json:"total_ars"`
	TotalUSD        decimal.Decimal  `json:"total_usd"`
	TotalUnifiedARS decimal.Decimal  `json:"total_unified_ars"`
	Assets          []AssetValuation `json:"assets"`
}

// AssetServicer defines the contract for patrimony assets and valuation.
type AssetServicer interface {
	CreateAsset(userID uint, input AssetInput) (*models.Asset, error)
	GetUserAssets(userID uint) ([]models.Asset, error)
	GetAssetByID(userID, assetID uint) (*models.Asset, error)
	UpdateAsset(userID, assetID uint, input AssetInput) (*models.Asset, error)
	DeleteAsset(userID, assetID uint) error
	Summary(ctx context.Context, userID uint) (*AssetSummary, error)
}

// BudgetProgress contains spending vs budget data for the current month.
type BudgetProgress struct {
	BudgetID    uint            `json:"budget_id"`
	Category    string          `json:"category"`
	BudgetedARS decimal.Decimal `json:"budgeted_ars"`
	SpentARS    decimal.Decimal `json:"spent_ars"`
	Remaining   decimal.Decimal `json:"remaining_ars"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// BudgetInput carries the user-supplied fields of a budget.
type BudgetInput struct {
	Category string
	Amount   decimal.Decimal
	Currency models.Currency
	IsActive bool
}

// BudgetServicer defines the contract for budget business logic.
type BudgetServicer interface {
	CreateBudget(userID uint, input BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID uint) ([]models.Budget, error)
	UpdateBudget(userID, budgetID uint, input BudgetInput) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	GetBudgetProgress(ctx context.Context, userID, budgetID uint, asOf time.Time) (*BudgetProgress, error)
}

// ShortcutInput carries the user-supplied fields of a quick shortcut.
type ShortcutInput struct {
	Name      string
	Icon      string
	Category  string
	Amount    decimal.Decimal
	Currency  models.Currency
	SortOrder int
}

// ShortcutServicer defines the contract for quick-entry shortcuts.
type ShortcutServicer interface {
	CreateShortcut(userID uint, input ShortcutInput) (*models.Shortcut, error)
	GetUserShortcuts(userID uint) ([]models.Shortcut, error)
	UpdateShortcut(userID, shortcutID uint, input ShortcutInput) (*models.Shortcut, error)
	DeleteShortcut(userID, shortcutID uint) error
}

// SettingsServicer defines the contract for per-user settings.
type SettingsServicer interface {
	GetSettings(userID uint) (*models.Setting, error)
	UpdateSettings(userID uint, defaultCurrency models.Currency) (*models.Setting, error)
}

// ExportServicer defines the contract for versioned JSON backup and restore.
type ExportServicer interface {
	Export(userID uint) (*BackupDocument, error)
	Import(userID uint, raw []byte) error
}
