package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "billetera/internal/errors"
	"billetera/internal/models"
	"billetera/internal/rates"
	"billetera/internal/realtime"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db          *gorm.DB
	rateService rates.Servicer
	hub         *realtime.Hub
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, rateService rates.Servicer, hub *realtime.Hub) BudgetServicer {
	return &budgetService{db: db, rateService: rateService, hub: hub}
}

// CreateBudget creates a monthly budget for an expense category.
func (s *budgetService) CreateBudget(userID uint, input BudgetInput) (*models.Budget, error) {
	if err := validateBudgetInput(input); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:   userID,
		Category: input.Category,
		Amount:   input.Amount,
		Currency: input.Currency,
		IsActive: input.IsActive,
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionInsert, budget.ID)
	return budget, nil
}

// GetUserBudgets lists the user's budgets.
func (s *budgetService) GetUserBudgets(userID uint) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).Order("category ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// UpdateBudget updates an existing budget.
func (s *budgetService) UpdateBudget(userID, budgetID uint, input BudgetInput) (*models.Budget, error) {
	if err := validateBudgetInput(input); err != nil {
		return nil, err
	}

	budget, err := s.getBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	budget.Category = input.Category
	budget.Amount = input.Amount
	budget.Currency = input.Currency
	budget.IsActive = input.IsActive

	if err := s.db.Save(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionUpdate, budget.ID)
	return budget, nil
}

// DeleteBudget removes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.getBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionDelete, budgetID)
	return nil
}

// GetBudgetProgress compares the category's expense total for asOf's calendar
// month (summed over persisted ARS amounts) against the budget cap. USD caps
// are converted with the current venta rate.
func (s *budgetService) GetBudgetProgress(ctx context.Context, userID, budgetID uint, asOf time.Time) (*BudgetProgress, error) {
	budget, err := s.getBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	end := start.AddDate(0, 1, 0)

	var spent decimal.Decimal
	err = s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount_ars), 0)").
		Where("user_id = ? AND category = ? AND type = ? AND date >= ? AND date < ?",
			userID, budget.Category, models.TransactionTypeExpense, start, end).
		Scan(&spent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budgetedARS := budget.Amount
	if budget.Currency == models.CurrencyUSD {
		rate, err := s.rateService.GetRate(ctx)
		if err != nil {
			return nil, err
		}
		budgetedARS = rates.ToARS(budget.Amount, budget.Currency, rate)
	}

	var percentage decimal.Decimal
	if budgetedARS.IsPositive() {
		percentage = spent.Div(budgetedARS).Mul(decimal.NewFromInt(100))
	}

	return &BudgetProgress{
		BudgetID:    budget.ID,
		Category:    budget.Category,
		BudgetedARS: budgetedARS,
		SpentARS:    spent,
		Remaining:   budgetedARS.Sub(spent),
		Percentage:  percentage,
	}, nil
}

func (s *budgetService) getBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

func (s *budgetService) publish(userID uint, action string, id uint) {
	if s.hub != nil {
		s.hub.Publish(userID, realtime.Event{Table: "budgets", Action: action, ID: id})
	}
}

func validateBudgetInput(input BudgetInput) error {
	if input.Category == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if !input.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Currency != models.CurrencyARS && input.Currency != models.CurrencyUSD {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be ARS or USD")
	}
	return nil
}
