package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "billetera/internal/errors"
	"billetera/internal/logger"
	"billetera/internal/models"
	"billetera/internal/rates"
	"billetera/internal/realtime"
)

// errAlreadyStamped aborts a single materialization when another run stamped
// the definition first.
var errAlreadyStamped = errors.New("definition already processed this month")

// recurringService handles recurring definitions and their monthly
// materialization into ledger transactions.
type recurringService struct {
	db          *gorm.DB
	rateService rates.Servicer
	hub         *realtime.Hub
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB, rateService rates.Servicer, hub *realtime.Hub) RecurringServicer {
	return &recurringService{db: db, rateService: rateService, hub: hub}
}

// CreateIncome creates a recurring income definition.
func (s *recurringService) CreateIncome(userID uint, input RecurringInput) (*models.RecurringIncome, error) {
	if err := validateRecurringInput(input); err != nil {
		return nil, err
	}

	income := &models.RecurringIncome{
		UserID:     userID,
		Name:       input.Name,
		Amount:     input.Amount,
		Currency:   input.Currency,
		Category:   input.Category,
		DayOfMonth: input.DayOfMonth,
		IsActive:   input.IsActive,
	}
	if err := s.db.Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, "recurring_incomes", realtime.ActionInsert, income.ID)
	return income, nil
}

// UpdateIncome updates a recurring income definition. LastProcessedDate is
// never touched here; only the processor writes it.
func (s *recurringService) UpdateIncome(userID, id uint, input RecurringInput) (*models.RecurringIncome, error) {
	if err := validateRecurringInput(input); err != nil {
		return nil, err
	}

	var income models.RecurringIncome
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income.Name = input.Name
	income.Amount = input.Amount
	income.Currency = input.Currency
	income.Category = input.Category
	income.DayOfMonth = input.DayOfMonth
	income.IsActive = input.IsActive

	if err := s.db.Save(&income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, "recurring_incomes", realtime.ActionUpdate, income.ID)
	return &income, nil
}

// DeleteIncome removes a recurring income definition.
func (s *recurringService) DeleteIncome(userID, id uint) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.RecurringIncome{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecurringNotFound
	}

	s.publish(userID, "recurring_incomes", realtime.ActionDelete, id)
	return nil
}

// GetIncomes lists the user's recurring income definitions.
func (s *recurringService) GetIncomes(userID uint) ([]models.RecurringIncome, error) {
	var incomes []models.RecurringIncome
	if err := s.db.Where("user_id = ?", userID).Order("day_of_month ASC").Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return incomes, nil
}

// CreateExpense creates a recurring expense definition.
func (s *recurringService) CreateExpense(userID uint, input RecurringInput) (*models.RecurringExpense, error) {
	if err := validateRecurringInput(input); err != nil {
		return nil, err
	}

	expense := &models.RecurringExpense{
		UserID:     userID,
		Name:       input.Name,
		Icon:       input.Icon,
		Amount:     input.Amount,
		Currency:   input.Currency,
		Category:   input.Category,
		DayOfMonth: input.DayOfMonth,
		IsActive:   input.IsActive,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, "recurring_expenses", realtime.ActionInsert, expense.ID)
	return expense, nil
}

// UpdateExpense updates a recurring expense definition.
func (s *recurringService) UpdateExpense(userID, id uint, input RecurringInput) (*models.RecurringExpense, error) {
	if err := validateRecurringInput(input); err != nil {
		return nil, err
	}

	var expense models.RecurringExpense
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	expense.Name = input.Name
	expense.Icon = input.Icon
	expense.Amount = input.Amount
	expense.Currency = input.Currency
	expense.Category = input.Category
	expense.DayOfMonth = input.DayOfMonth
	expense.IsActive = input.IsActive

	if err := s.db.Save(&expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, "recurring_expenses", realtime.ActionUpdate, expense.ID)
	return &expense, nil
}

// DeleteExpense removes a recurring expense definition.
func (s *recurringService) DeleteExpense(userID, id uint) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.RecurringExpense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecurringNotFound
	}

	s.publish(userID, "recurring_expenses", realtime.ActionDelete, id)
	return nil
}

// GetExpenses lists the user's recurring expense definitions.
func (s *recurringService) GetExpenses(userID uint) ([]models.RecurringExpense, error) {
	var expenses []models.RecurringExpense
	if err := s.db.Where("user_id = ?", userID).Order("day_of_month ASC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// ProcessRecurring materializes due definitions of the given kind into ledger
// transactions, at most once per definition per calendar month.
//
// Day-of-month matching is strict equality: a definition with day 31 never
// fires in a 30-day month.
func (s *recurringService) ProcessRecurring(ctx context.Context, userID uint, kind RecurringKind, asOf time.Time) (int, error) {
	switch kind {
	case RecurringKindIncome, RecurringKindExpense:
	default:
		return 0, apperrors.ErrInvalidRecurringKind
	}

	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())

	var incomes []models.RecurringIncome
	var expenses []models.RecurringExpense
	if kind == RecurringKindIncome {
		if err := s.db.Where("user_id = ? AND is_active = ? AND day_of_month = ?", userID, true, asOf.Day()).
			Find(&incomes).Error; err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(incomes) == 0 {
			return 0, nil
		}
	} else {
		if err := s.db.Where("user_id = ? AND is_active = ? AND day_of_month = ?", userID, true, asOf.Day()).
			Find(&expenses).Error; err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(expenses) == 0 {
			return 0, nil
		}
	}

	// No partial processing without a rate: the whole run aborts here.
	rate, err := s.rateService.GetRate(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	if kind == RecurringKindIncome {
		for i := range incomes {
			def := &incomes[i]
			if processedThisMonth(def.LastProcessedDate, asOf) {
				continue
			}
			if err := s.materializeIncome(def, rate, asOf, monthStart); err != nil {
				if !errors.Is(err, errAlreadyStamped) {
					logger.Get().Errorw("failed to materialize recurring income",
						"definition_id", def.ID, "error", err.Error())
				}
				continue
			}
			processed++
		}
	} else {
		for i := range expenses {
			def := &expenses[i]
			if processedThisMonth(def.LastProcessedDate, asOf) {
				continue
			}
			if err := s.materializeExpense(def, rate, asOf, monthStart); err != nil {
				if !errors.Is(err, errAlreadyStamped) {
					logger.Get().Errorw("failed to materialize recurring expense",
						"definition_id", def.ID, "error", err.Error())
				}
				continue
			}
			processed++
		}
	}

	if processed > 0 {
		s.publish(userID, "transactions", realtime.ActionInsert, 0)
	}
	return processed, nil
}

// materializeIncome inserts the ledger entry and stamps the definition in one
// transaction. The stamp is a conditional update: if a concurrent run already
// stamped this month, zero rows match and the whole unit rolls back.
func (s *recurringService) materializeIncome(def *models.RecurringIncome, rate rates.Rate, asOf, monthStart time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		entry := &models.Transaction{
			UserID:            def.UserID,
			Type:              models.TransactionTypeIncome,
			Amount:            def.Amount,
			Currency:          def.Currency,
			AmountARS:         rates.ToARS(def.Amount, def.Currency, rate),
			Category:          def.Category,
			Description:       def.Name,
			Date:              asOf,
			IsRecurring:       true,
			RecurringIncomeID: &def.ID,
		}
		if def.Currency == models.CurrencyUSD {
			venta := rate.Venta
			entry.ExchangeRateUsed = &venta
		}

		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		result := tx.Model(&models.RecurringIncome{}).
			Where("id = ? AND (last_processed_date IS NULL OR last_processed_date < ?)", def.ID, monthStart).
			Update("last_processed_date", asOf)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errAlreadyStamped
		}
		return nil
	})
}

// materializeExpense is the expense counterpart. Expense entries carry the
// definition's icon in the description and no back-reference.
func (s *recurringService) materializeExpense(def *models.RecurringExpense, rate rates.Rate, asOf, monthStart time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		description := def.Name
		if def.Icon != "" {
			description = strings.TrimSpace(def.Icon + " " + def.Name)
		}

		entry := &models.Transaction{
			UserID:      def.UserID,
			Type:        models.TransactionTypeExpense,
			Amount:      def.Amount,
			Currency:    def.Currency,
			AmountARS:   rates.ToARS(def.Amount, def.Currency, rate),
			Category:    def.Category,
			Description: description,
			Date:        asOf,
			IsRecurring: true,
		}
		if def.Currency == models.CurrencyUSD {
			venta := rate.Venta
			entry.ExchangeRateUsed = &venta
		}

		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		result := tx.Model(&models.RecurringExpense{}).
			Where("id = ? AND (last_processed_date IS NULL OR last_processed_date < ?)", def.ID, monthStart).
			Update("last_processed_date", asOf)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errAlreadyStamped
		}
		return nil
	})
}

// processedThisMonth reports whether the definition already produced a
// transaction in asOf's calendar month.
func processedThisMonth(last *time.Time, asOf time.Time) bool {
	if last == nil {
		return false
	}
	return last.Month() == asOf.Month() && last.Year() == asOf.Year()
}

func (s *recurringService) publish(userID uint, table, action string, id uint) {
	if s.hub != nil {
		s.hub.Publish(userID, realtime.Event{Table: table, Action: action, ID: id})
	}
}

func validateRecurringInput(input RecurringInput) error {
	if input.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if !input.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Currency != models.CurrencyARS && input.Currency != models.CurrencyUSD {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be ARS or USD")
	}
	if input.Category == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if input.DayOfMonth < 1 || input.DayOfMonth > 31 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "day of month must be between 1 and 31")
	}
	return nil
}
