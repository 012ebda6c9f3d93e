package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "billetera/internal/errors"
	"billetera/internal/models"
	"billetera/internal/services"
)

// ShortcutHandler handles quick-entry shortcut requests.
type ShortcutHandler struct {
	shortcutService services.ShortcutServicer
}

// NewShortcutHandler creates a new ShortcutHandler.
func NewShortcutHandler(shortcutService services.ShortcutServicer) *ShortcutHandler {
	return &ShortcutHandler{shortcutService: shortcutService}
}

// ShortcutRequest represents the request payload for creating or updating a shortcut
type ShortcutRequest struct {
	Name      string          `json:"name" binding:"required,max=100"`
	Icon      string          `json:"icon" binding:"max=10"`
	Category  string          `json:"category" binding:"required,max=100"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Currency  models.Currency `json:"currency" binding:"required,ledger_currency"`
	SortOrder int             `json:"sort_order"`
}

func (r ShortcutRequest) toInput() services.ShortcutInput {
	return services.ShortcutInput{
		Name:      r.Name,
		Icon:      r.Icon,
		Category:  r.Category,
		Amount:    r.Amount,
		Currency:  r.Currency,
		SortOrder: r.SortOrder,
	}
}

// CreateShortcut handles the creation of a new shortcut
// @Summary     Create a shortcut
// @Description Create a one-tap expense shortcut
// @Tags        shortcuts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ShortcutRequest true "Shortcut details"
// @Success     201 {object} models.Shortcut "Shortcut created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shortcuts [post]
func (h *ShortcutHandler) CreateShortcut(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ShortcutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	shortcut, err := h.shortcutService.CreateShortcut(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"shortcut": shortcut})
}

// GetUserShortcuts lists the user's shortcuts ordered by sort order
// @Summary     List shortcuts
// @Tags        shortcuts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Shortcut "Shortcuts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shortcuts [get]
func (h *ShortcutHandler) GetUserShortcuts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	shortcuts, err := h.shortcutService.GetUserShortcuts(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shortcuts": shortcuts})
}

// UpdateShortcut handles updating an existing shortcut
// @Summary     Update a shortcut
// @Tags        shortcuts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true "Shortcut ID"
// @Param       request body ShortcutRequest true "Updated shortcut details"
// @Success     200 {object} models.Shortcut "Shortcut updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Shortcut not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shortcuts/{id} [put]
func (h *ShortcutHandler) UpdateShortcut(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	shortcutID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ShortcutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	shortcut, err := h.shortcutService.UpdateShortcut(userID, shortcutID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shortcut": shortcut})
}

// DeleteShortcut handles the deletion of a shortcut
// @Summary     Delete a shortcut
// @Tags        shortcuts
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Shortcut ID"
// @Success     200 {object} MessageResponse "Shortcut deleted"
// @Failure     400 {object} ErrorResponse "Invalid shortcut ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Shortcut not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shortcuts/{id} [delete]
func (h *ShortcutHandler) DeleteShortcut(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	shortcutID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.shortcutService.DeleteShortcut(userID, shortcutID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Shortcut deleted successfully"})
}
