package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "billetera/internal/errors"
	"billetera/internal/models"
	"billetera/internal/testutil"
)

func TestBudgetCRUD(t *testing.T) {
	t.Run("create_and_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, stubRate(1000), nil)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, BudgetInput{
			Category: "Comida",
			Amount:   decimal.NewFromInt(200000),
			Currency: models.CurrencyARS,
			IsActive: true,
		})
		testutil.AssertNoError(t, err)
		if budget.ID == 0 {
			t.Fatal("expected non-zero budget ID")
		}

		budgets, err := svc.GetUserBudgets(user.ID)
		testutil.AssertNoError(t, err)
		if len(budgets) != 1 {
			t.Fatalf("expected 1 budget, got %d", len(budgets))
		}
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, stubRate(1000), nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, BudgetInput{
			Category: "Comida",
			Amount:   decimal.Zero,
			Currency: models.CurrencyARS,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("delete_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, stubRate(1000), nil)
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteBudget(user.ID, 9999)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestGetBudgetProgress(t *testing.T) {
	asOf := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("sums_category_expenses_for_the_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		rateSvc := stubRate(1000)
		svc := NewBudgetService(db, rateSvc, nil)
		user := testutil.CreateTestUser(t, db)

		budget := testutil.CreateTestBudget(t, db, user.ID, "Comida", decimal.NewFromInt(200000))

		inMonth := []models.Transaction{
			{UserID: user.ID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(50000), Currency: models.CurrencyARS, AmountARS: decimal.NewFromInt(50000), Category: "Comida", Date: asOf},
			{UserID: user.ID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(30000), Currency: models.CurrencyARS, AmountARS: decimal.NewFromInt(30000), Category: "Comida", Date: asOf.AddDate(0, 0, 5)},
			// Different category, different month and income entries are out.
			{UserID: user.ID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(99999), Currency: models.CurrencyARS, AmountARS: decimal.NewFromInt(99999), Category: "Transporte", Date: asOf},
			{UserID: user.ID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(77777), Currency: models.CurrencyARS, AmountARS: decimal.NewFromInt(77777), Category: "Comida", Date: asOf.AddDate(0, -1, 0)},
			{UserID: user.ID, Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(11111), Currency: models.CurrencyARS, AmountARS: decimal.NewFromInt(11111), Category: "Comida", Date: asOf},
		}
		for i := range inMonth {
			if err := db.Create(&inMonth[i]).Error; err != nil {
				t.Fatalf("failed to seed transaction: %v", err)
			}
		}

		progress, err := svc.GetBudgetProgress(context.Background(), user.ID, budget.ID, asOf)
		testutil.AssertNoError(t, err)

		if !progress.SpentARS.Equal(decimal.NewFromInt(80000)) {
			t.Errorf("expected spent 80000, got %s", progress.SpentARS)
		}
		if !progress.Remaining.Equal(decimal.NewFromInt(120000)) {
			t.Errorf("expected remaining 120000, got %s", progress.Remaining)
		}
		if !progress.Percentage.Equal(decimal.NewFromInt(40)) {
			t.Errorf("expected 40%%, got %s", progress.Percentage)
		}
		if rateSvc.calls != 0 {
			t.Errorf("ARS budget must not consult the rate service, got %d calls", rateSvc.calls)
		}
	})

	t.Run("usd_cap_converted_at_venta", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, stubRate(1000), nil)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, BudgetInput{
			Category: "Viajes",
			Amount:   decimal.NewFromInt(100),
			Currency: models.CurrencyUSD,
			IsActive: true,
		})
		testutil.AssertNoError(t, err)

		progress, err := svc.GetBudgetProgress(context.Background(), user.ID, budget.ID, asOf)
		testutil.AssertNoError(t, err)

		if !progress.BudgetedARS.Equal(decimal.NewFromInt(100000)) {
			t.Errorf("expected budgeted 100000 ARS, got %s", progress.BudgetedARS)
		}
	})

	t.Run("usd_cap_rate_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, &stubRateService{err: apperrors.ErrRateUnavailable}, nil)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, BudgetInput{
			Category: "Viajes",
			Amount:   decimal.NewFromInt(100),
			Currency: models.CurrencyUSD,
			IsActive: true,
		})
		testutil.AssertNoError(t, err)

		_, err = svc.GetBudgetProgress(context.Background(), user.ID, budget.ID, asOf)
		testutil.AssertAppError(t, err, "RATE_UNAVAILABLE")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, stubRate(1000), nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetBudgetProgress(context.Background(), user.ID, 9999, asOf)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}
