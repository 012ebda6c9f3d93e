package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"billetera/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction creates an ARS transaction of the given type and amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, txType models.TransactionType, amount decimal.Decimal) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Currency:  models.CurrencyARS,
		AmountARS: amount,
		Category:  fmt.Sprintf("Test Category %d", nextID()),
		Date:      time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestRecurringIncome creates an active recurring income due on dayOfMonth.
func CreateTestRecurringIncome(t *testing.T, db *gorm.DB, userID uint, amount decimal.Decimal, currency models.Currency, dayOfMonth int) *models.RecurringIncome {
	t.Helper()

	income := &models.RecurringIncome{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Income %d", nextID()),
		Amount:     amount,
		Currency:   currency,
		Category:   "Salary",
		DayOfMonth: dayOfMonth,
		IsActive:   true,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test recurring income: %v", err)
	}
	return income
}

// CreateTestRecurringExpense creates an active recurring expense due on dayOfMonth.
func CreateTestRecurringExpense(t *testing.T, db *gorm.DB, userID uint, amount decimal.Decimal, currency models.Currency, dayOfMonth int) *models.RecurringExpense {
	t.Helper()

	expense := &models.RecurringExpense{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Expense %d", nextID()),
		Icon:       "🏠",
		Amount:     amount,
		Currency:   currency,
		Category:   "Housing",
		DayOfMonth: dayOfMonth,
		IsActive:   true,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return expense
}

// CreateTestFlatAsset creates a flat-valued asset in the given currency.
func CreateTestFlatAsset(t *testing.T, db *gorm.DB, userID uint, currency models.Currency, amount decimal.Decimal) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Asset %d", nextID()),
		Type:     models.AssetTypeBank,
		Currency: currency,
		Amount:   amount,
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestPricedAsset creates a quantity-times-price asset with the given
// ticker.
func CreateTestPricedAsset(t *testing.T, db *gorm.DB, userID uint, assetType models.AssetType, ticker string, quantity decimal.Decimal) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Holding %d", nextID()),
		Type:     assetType,
		Currency: models.CurrencyUSD,
		Quantity: quantity,
		Ticker:   ticker,
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test priced asset: %v", err)
	}
	return asset
}

// CreateTestBudget creates an active ARS budget for the given category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint, category string, amount decimal.Decimal) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:   userID,
		Category: category,
		Amount:   amount,
		Currency: models.CurrencyARS,
		IsActive: true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestShortcut creates a shortcut with the given sort order.
func CreateTestShortcut(t *testing.T, db *gorm.DB, userID uint, sortOrder int) *models.Shortcut {
	t.Helper()

	shortcut := &models.Shortcut{
		UserID:    userID,
		Name:      fmt.Sprintf("Test Shortcut %d", nextID()),
		Icon:      "☕",
		Category:  "Coffee",
		Amount:    decimal.NewFromInt(1500),
		Currency:  models.CurrencyARS,
		SortOrder: sortOrder,
	}
	if err := db.Create(shortcut).Error; err != nil {
		t.Fatalf("failed to create test shortcut: %v", err)
	}
	return shortcut
}

// CreateTestRateSnapshot persists a blue-rate snapshot fetched at the given time.
func CreateTestRateSnapshot(t *testing.T, db *gorm.DB, compra, venta decimal.Decimal, fetchedAt time.Time) *models.RateSnapshot {
	t.Helper()

	snap := &models.RateSnapshot{
		Key:       models.RateSnapshotKey,
		Compra:    compra,
		Venta:     venta,
		FetchedAt: fetchedAt,
	}
	if err := db.Create(snap).Error; err != nil {
		t.Fatalf("failed to create test rate snapshot: %v", err)
	}
	return snap
}
