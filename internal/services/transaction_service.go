package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "billetera/internal/errors"
	"billetera/internal/models"
	"billetera/internal/pagination"
	"billetera/internal/rates"
	"billetera/internal/realtime"
)

// transactionService handles ledger business logic.
type transactionService struct {
	db          *gorm.DB
	rateService rates.Servicer
	hub         *realtime.Hub
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, rateService rates.Servicer, hub *realtime.Hub) TransactionServicer {
	return &transactionService{db: db, rateService: rateService, hub: hub}
}

// CreateTransaction records a new ledger entry. The ARS amount is computed
// once here with the current venta rate and persisted; it is never recomputed
// when the rate moves later.
func (s *transactionService) CreateTransaction(ctx context.Context, userID uint, input TransactionInput) (*models.Transaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	amountARS, rateUsed, err := s.convert(ctx, input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:           userID,
		Type:             input.Type,
		Amount:           input.Amount,
		Currency:         input.Currency,
		AmountARS:        amountARS,
		Category:         input.Category,
		Description:      input.Description,
		Date:             date,
		ExchangeRateUsed: rateUsed,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionInsert, transaction.ID)
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID returns a transaction by ID if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies an explicit user edit. The ARS amount is
// recomputed with the current rate, since the user is restating the entry.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID uint, input TransactionInput) (*models.Transaction, error) {
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	amountARS, rateUsed, err := s.convert(ctx, input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}

	transaction.Type = input.Type
	transaction.Amount = input.Amount
	transaction.Currency = input.Currency
	transaction.AmountARS = amountARS
	transaction.Category = input.Category
	transaction.Description = input.Description
	transaction.ExchangeRateUsed = rateUsed
	if !input.Date.IsZero() {
		transaction.Date = input.Date
	}

	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionUpdate, transaction.ID)
	return transaction, nil
}

// DeleteTransaction removes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionDelete, transactionID)
	return nil
}

// MonthlySummary aggregates one calendar month of activity in ARS: income and
// expense totals plus a per-category expense breakdown.
func (s *transactionService) MonthlySummary(userID uint, month, year int) (*MonthlySummary, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	scoped := func() *gorm.DB {
		return s.db.Model(&models.Transaction{}).
			Where("user_id = ? AND date >= ? AND date < ?", userID, start, end)
	}

	var income, expense decimal.Decimal
	if err := scoped().Where("type = ?", models.TransactionTypeIncome).
		Select("COALESCE(SUM(amount_ars), 0)").Scan(&income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := scoped().Where("type = ?", models.TransactionTypeExpense).
		Select("COALESCE(SUM(amount_ars), 0)").Scan(&expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var byCategory []CategoryTotal
	if err := scoped().Where("type = ?", models.TransactionTypeExpense).
		Select("category, COALESCE(SUM(amount_ars), 0) AS total_ars").
		Group("category").
		Order("total_ars DESC").
		Scan(&byCategory).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &MonthlySummary{
		Month:      month,
		Year:       year,
		IncomeARS:  income,
		ExpenseARS: expense,
		BalanceARS: income.Sub(expense),
		ByCategory: byCategory,
	}, nil
}

// convert returns the ARS amount for the input and the venta rate applied,
// which is recorded only for USD entries. ARS entries never touch the rate
// service, so they keep working when the rate is unavailable.
func (s *transactionService) convert(ctx context.Context, amount decimal.Decimal, currency models.Currency) (decimal.Decimal, *decimal.Decimal, error) {
	if currency == models.CurrencyARS {
		return amount, nil, nil
	}

	rate, err := s.rateService.GetRate(ctx)
	if err != nil {
		return decimal.Decimal{}, nil, err
	}
	venta := rate.Venta
	return rates.ToARS(amount, currency, rate), &venta, nil
}

func (s *transactionService) publish(userID uint, action string, id uint) {
	if s.hub != nil {
		s.hub.Publish(userID, realtime.Event{Table: "transactions", Action: action, ID: id})
	}
}

func validateTransactionInput(input TransactionInput) error {
	if input.Type != models.TransactionTypeIncome && input.Type != models.TransactionTypeExpense {
		return apperrors.ErrInvalidTransactionType
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
	return nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Month != nil && f.Year != nil {
		start := time.Date(*f.Year, time.Month(*f.Month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		q = q.Where("date >= ? AND date < ?", start, end)
	} else if f.Year != nil {
		start := time.Date(*f.Year, 1, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("date >= ? AND date < ?", start, start.AddDate(1, 0, 0))
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	return q
}
