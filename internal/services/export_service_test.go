package services

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"billetera/internal/models"
	"billetera/internal/testutil"
)

func TestExport(t *testing.T) {
	t.Run("collects_only_the_users_data", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExportService(db, nil)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(5000))
		testutil.CreateTestTransaction(t, db, other.ID, models.TransactionTypeExpense, decimal.NewFromInt(9999))
		income := testutil.CreateTestRecurringIncome(t, db, user.ID, decimal.NewFromInt(1000), models.CurrencyUSD, 5)
		budget := testutil.CreateTestBudget(t, db, user.ID, "Comida", decimal.NewFromInt(200000))

		doc, err := svc.Export(user.ID)
		testutil.AssertNoError(t, err)

		if doc.Version != 1 {
			t.Errorf("expected version 1, got %d", doc.Version)
		}
		if len(doc.Data.Transactions) != 1 {
			t.Errorf("expected 1 transaction, got %d", len(doc.Data.Transactions))
		}
		if len(doc.Data.RecurringIncomes) != 1 {
			t.Fatalf("expected 1 recurring income, got %d", len(doc.Data.RecurringIncomes))
		}
		// The sections must carry their own rows, not rescans of the
		// transactions table.
		got := doc.Data.RecurringIncomes[0]
		if got.Name != income.Name || got.DayOfMonth != income.DayOfMonth {
			t.Errorf("recurring income exported as name=%q day=%d, want name=%q day=%d", got.Name, got.DayOfMonth, income.Name, income.DayOfMonth)
		}
		if len(doc.Data.Budgets) != 1 {
			t.Fatalf("expected 1 budget, got %d", len(doc.Data.Budgets))
		}
		if doc.Data.Budgets[0].Category != budget.Category {
			t.Errorf("budget exported with category %q, want %q", doc.Data.Budgets[0].Category, budget.Category)
		}
		if len(doc.Data.Shortcuts) != 0 {
			t.Errorf("expected no shortcuts, got %d", len(doc.Data.Shortcuts))
		}
		if len(doc.Data.RecurringExpenses) != 0 {
			t.Errorf("expected no recurring expenses, got %d", len(doc.Data.RecurringExpenses))
		}
		if len(doc.Data.Assets) != 0 {
			t.Errorf("expected no assets, got %d", len(doc.Data.Assets))
		}
	})
}

func TestImport(t *testing.T) {
	t.Run("round_trip_restores_data", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExportService(db, nil)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(5000))
		testutil.CreateTestShortcut(t, db, user.ID, 1)

		doc, err := svc.Export(user.ID)
		testutil.AssertNoError(t, err)
		raw, err := json.Marshal(doc)
		testutil.AssertNoError(t, err)

		// Restore into a fresh account.
		target := testutil.CreateTestUser(t, db)
		err = svc.Import(target.ID, raw)
		testutil.AssertNoError(t, err)

		var txCount, shortcutCount int64
		db.Model(&models.Transaction{}).Where("user_id = ?", target.ID).Count(&txCount)
		db.Model(&models.Shortcut{}).Where("user_id = ?", target.ID).Count(&shortcutCount)
		if txCount != 1 || shortcutCount != 1 {
			t.Errorf("expected 1 transaction and 1 shortcut restored, got %d and %d", txCount, shortcutCount)
		}

		var setting models.Setting
		if err := db.Where("user_id = ?", target.ID).First(&setting).Error; err != nil {
			t.Fatalf("expected settings row after import: %v", err)
		}
		if setting.LastBackupDate == nil {
			t.Error("expected last_backup_date stamped on import")
		}
	})

	t.Run("replaces_existing_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExportService(db, nil)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(5000))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(6000))

		raw, err := json.Marshal(BackupDocument{
			Version: 1,
			Data: BackupData{
				Transactions: []models.Transaction{
					{Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(100), Currency: models.CurrencyARS, AmountARS: decimal.NewFromInt(100), Category: "Sueldo"},
				},
			},
		})
		testutil.AssertNoError(t, err)

		err = svc.Import(user.ID, raw)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected old transactions replaced, got %d rows", count)
		}
	})

	t.Run("absent_sections_left_untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExportService(db, nil)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestRecurringIncome(t, db, user.ID, decimal.NewFromInt(1000), models.CurrencyARS, 5)
		testutil.CreateTestBudget(t, db, user.ID, "Comida", decimal.NewFromInt(200000))

		raw := []byte(`{"version":1,"data":{"transactions":[]}}`)
		err := svc.Import(user.ID, raw)
		testutil.AssertNoError(t, err)

		var incomeCount, budgetCount int64
		db.Model(&models.RecurringIncome{}).Where("user_id = ?", user.ID).Count(&incomeCount)
		db.Model(&models.Budget{}).Where("user_id = ?", user.ID).Count(&budgetCount)
		if incomeCount != 1 || budgetCount != 1 {
			t.Errorf("expected absent sections preserved, got %d incomes and %d budgets", incomeCount, budgetCount)
		}
	})

	t.Run("unsupported_version_rejected_before_write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExportService(db, nil)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(5000))

		raw := []byte(`{"version":99,"data":{"transactions":[]}}`)
		err := svc.Import(user.ID, raw)
		testutil.AssertAppError(t, err, "IMPORT_UNSUPPORTED_VERSION")

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected data intact after rejected import, got %d rows", count)
		}
	})

	t.Run("missing_transactions_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExportService(db, nil)
		user := testutil.CreateTestUser(t, db)

		raw := []byte(`{"version":1,"data":{}}`)
		err := svc.Import(user.ID, raw)
		testutil.AssertAppError(t, err, "IMPORT_INVALID_FORMAT")
	})

	t.Run("malformed_json_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExportService(db, nil)
		user := testutil.CreateTestUser(t, db)

		err := svc.Import(user.ID, []byte(`{"version":`))
		testutil.AssertAppError(t, err, "IMPORT_INVALID_FORMAT")
	})
}
