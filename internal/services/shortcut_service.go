package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "billetera/internal/errors"
	"billetera/internal/models"
	"billetera/internal/realtime"
)

// shortcutService handles quick-entry shortcut business logic.
type shortcutService struct {
	db  *gorm.DB
	hub *realtime.Hub
}

// NewShortcutService creates a new ShortcutServicer.
func NewShortcutService(db *gorm.DB, hub *realtime.Hub) ShortcutServicer {
	return &shortcutService{db: db, hub: hub}
}

// CreateShortcut creates a quick shortcut.
func (s *shortcutService) CreateShortcut(userID uint, input ShortcutInput) (*models.Shortcut, error) {
	if err := validateShortcutInput(input); err != nil {
		return nil, err
	}

	shortcut := &models.Shortcut{
		UserID:    userID,
		Name:      input.Name,
		Icon:      input.Icon,
		Category:  input.Category,
		Amount:    input.Amount,
		Currency:  input.Currency,
		SortOrder: input.SortOrder,
	}
	if err := s.db.Create(shortcut).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionInsert, shortcut.ID)
	return shortcut, nil
}

// GetUserShortcuts lists the user's shortcuts in display order.
func (s *shortcutService) GetUserShortcuts(userID uint) ([]models.Shortcut, error) {
	var shortcuts []models.Shortcut
	if err := s.db.Where("user_id = ?", userID).Order("sort_order ASC").Find(&shortcuts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return shortcuts, nil
}

// UpdateShortcut updates an existing shortcut.
func (s *shortcutService) UpdateShortcut(userID, shortcutID uint, input ShortcutInput) (*models.Shortcut, error) {
	if err := validateShortcutInput(input); err != nil {
		return nil, err
	}

	var shortcut models.Shortcut
	if err := s.db.Where("id = ? AND user_id = ?", shortcutID, userID).First(&shortcut).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShortcutNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	shortcut.Name = input.Name
	shortcut.Icon = input.Icon
	shortcut.Category = input.Category
	shortcut.Amount = input.Amount
	shortcut.Currency = input.Currency
	shortcut.SortOrder = input.SortOrder

	if err := s.db.Save(&shortcut).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionUpdate, shortcut.ID)
	return &shortcut, nil
}

// DeleteShortcut removes a shortcut.
func (s *shortcutService) DeleteShortcut(userID, shortcutID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", shortcutID, userID).Delete(&models.Shortcut{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrShortcutNotFound
	}

	s.publish(userID, realtime.ActionDelete, shortcutID)
	return nil
}

func (s *shortcutService) publish(userID uint, action string, id uint) {
	if s.hub != nil {
		s.hub.Publish(userID, realtime.Event{Table: "shortcuts", Action: action, ID: id})
	}
}

func validateShortcutInput(input ShortcutInput) error {
	if input.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
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
