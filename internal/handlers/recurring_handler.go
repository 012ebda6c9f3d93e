package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "billetera/internal/errors"
	"billetera/internal/models"
	"billetera/internal/services"
)

// RecurringHandler handles recurring income and expense definitions and their
// monthly processing.
type RecurringHandler struct {
	recurringService services.RecurringServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

// RecurringRequest represents the request payload for creating or updating a
// recurring definition. Icon is only meaningful for expenses.
type RecurringRequest struct {
	Name       string          `json:"name" binding:"required,max=100"`
	Icon       string          `json:"icon" binding:"max=10"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Currency   models.Currency `json:"currency" binding:"required,ledger_currency"`
	Category   string          `json:"category" binding:"required,max=100"`
	DayOfMonth int             `json:"day_of_month" binding:"required,day_of_month"`
	IsActive   *bool           `json:"is_active"`
}

// ProcessResponse reports how many transactions a processing run created.
type ProcessResponse struct {
	Created int `json:"created"`
}

func (r RecurringRequest) toInput() services.RecurringInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return services.RecurringInput{
		Name:       r.Name,
		Icon:       r.Icon,
		Amount:     r.Amount,
		Currency:   r.Currency,
		Category:   r.Category,
		DayOfMonth: r.DayOfMonth,
		IsActive:   active,
	}
}

// CreateIncome handles the creation of a recurring income definition
// @Summary     Create a recurring income
// @Description Create a recurring income definition posted monthly on its day of month
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecurringRequest true "Recurring income details"
// @Success     201 {object} models.RecurringIncome "Recurring income created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/incomes [post]
func (h *RecurringHandler) CreateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	income, err := h.recurringService.CreateIncome(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_income": income})
}

// GetIncomes lists the user's recurring income definitions
// @Summary     List recurring incomes
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.RecurringIncome "Recurring incomes"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/incomes [get]
func (h *RecurringHandler) GetIncomes(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomes, err := h.recurringService.GetIncomes(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_incomes": incomes})
}

// UpdateIncome updates a recurring income definition
// @Summary     Update a recurring income
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Recurring income ID"
// @Param       request body RecurringRequest true "Updated details"
// @Success     200 {object} models.RecurringIncome "Recurring income updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/incomes/{id} [put]
func (h *RecurringHandler) UpdateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	income, err := h.recurringService.UpdateIncome(userID, id, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_income": income})
}

// DeleteIncome deletes a recurring income definition
// @Summary     Delete a recurring income
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Recurring income ID"
// @Success     200 {object} MessageResponse "Recurring income deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/incomes/{id} [delete]
func (h *RecurringHandler) DeleteIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteIncome(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recurring income deleted successfully"})
}

// CreateExpense handles the creation of a recurring expense definition
// @Summary     Create a recurring expense
// @Description Create a recurring expense definition posted monthly on its day of month
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RecurringRequest true "Recurring expense details"
// @Success     201 {object} models.RecurringExpense "Recurring expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/expenses [post]
func (h *RecurringHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.recurringService.CreateExpense(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_expense": expense})
}

// GetExpenses lists the user's recurring expense definitions
// @Summary     List recurring expenses
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.RecurringExpense "Recurring expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/expenses [get]
func (h *RecurringHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.recurringService.GetExpenses(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expenses": expenses})
}

// UpdateExpense updates a recurring expense definition
// @Summary     Update a recurring expense
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Recurring expense ID"
// @Param       request body RecurringRequest true "Updated details"
// @Success     200 {object} models.RecurringExpense "Recurring expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/expenses/{id} [put]
func (h *RecurringHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.recurringService.UpdateExpense(userID, id, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expense": expense})
}

// DeleteExpense deletes a recurring expense definition
// @Summary     Delete a recurring expense
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Recurring expense ID"
// @Success     200 {object} MessageResponse "Recurring expense deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/expenses/{id} [delete]
func (h *RecurringHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteExpense(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recurring expense deleted successfully"})
}

// Process materializes due recurring definitions into ledger transactions
// @Summary     Process recurring definitions
// @Description Post ledger entries for every active definition of the given kind due today and not yet posted this month
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       kind query string true "Definition kind (income or expense)"
// @Success     200 {object} ProcessResponse "Number of transactions created"
// @Failure     400 {object} ErrorResponse "Invalid kind"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Exchange rate unavailable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/process [post]
func (h *RecurringHandler) Process(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	kind := services.RecurringKind(c.Query("kind"))

	created, err := h.recurringService.ProcessRecurring(c.Request.Context(), userID, kind, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}
