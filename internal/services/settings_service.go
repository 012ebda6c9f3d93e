package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "billetera/internal/errors"
	"billetera/internal/models"
)

// settingsService handles per-user settings.
type settingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB) SettingsServicer {
	return &settingsService{db: db}
}

// GetSettings returns the user's settings, creating the default row on first access.
func (s *settingsService) GetSettings(userID uint) (*models.Setting, error) {
	var setting models.Setting
	err := s.db.Where("user_id = ?", userID).First(&setting).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	setting = models.Setting{UserID: userID, DefaultCurrency: models.CurrencyARS}
	if err := s.db.Create(&setting).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &setting, nil
}

// UpdateSettings changes the user's default currency.
func (s *settingsService) UpdateSettings(userID uint, defaultCurrency models.Currency) (*models.Setting, error) {
	if defaultCurrency != models.CurrencyARS && defaultCurrency != models.CurrencyUSD {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be ARS or USD")
	}

	setting, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	setting.DefaultCurrency = defaultCurrency
	if err := s.db.Save(setting).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return setting, nil
}
