package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "billetera/internal/errors"
	"billetera/internal/models"
	"billetera/internal/rates"
	"billetera/internal/realtime"
)

// PriceLookup resolves current market prices keyed by ticker. Lookups never
// fail: a ticker with no known price is simply absent from the result.
type PriceLookup interface {
	GetPrices(ctx context.Context, tickers []string) map[string]decimal.Decimal
}

// assetService handles patrimony assets and their unified valuation.
type assetService struct {
	db           *gorm.DB
	rateService  rates.Servicer
	cryptoPrices PriceLookup
	cedearPrices PriceLookup
	hub          *realtime.Hub
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB, rateService rates.Servicer, cryptoPrices, cedearPrices PriceLookup, hub *realtime.Hub) AssetServicer {
	return &assetService{
		db:           db,
		rateService:  rateService,
		cryptoPrices: cryptoPrices,
		cedearPrices: cedearPrices,
		hub:          hub,
	}
}

// CreateAsset creates a new asset.
func (s *assetService) CreateAsset(userID uint, input AssetInput) (*models.Asset, error) {
	if err := validateAssetInput(input); err != nil {
		return nil, err
	}

	asset := &models.Asset{
		UserID:        userID,
		Name:          input.Name,
		Type:          input.Type,
		Currency:      input.Currency,
		Amount:        input.Amount,
		Quantity:      input.Quantity,
		Ticker:        input.Ticker,
		PurchasePrice: input.PurchasePrice,
	}
	if err := s.db.Create(asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionInsert, asset.ID)
	return asset, nil
}

// GetUserAssets lists the user's assets.
func (s *assetService) GetUserAssets(userID uint) ([]models.Asset, error) {
	var assets []models.Asset
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return assets, nil
}

// GetAssetByID returns an asset by ID if it belongs to the user.
func (s *assetService) GetAssetByID(userID, assetID uint) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.Where("id = ? AND user_id = ?", assetID, userID).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

// UpdateAsset updates an existing asset.
func (s *assetService) UpdateAsset(userID, assetID uint, input AssetInput) (*models.Asset, error) {
	if err := validateAssetInput(input); err != nil {
		return nil, err
	}

	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return nil, err
	}

	asset.Name = input.Name
	asset.Type = input.Type
	asset.Currency = input.Currency
	asset.Amount = input.Amount
	asset.Quantity = input.Quantity
	asset.Ticker = input.Ticker
	asset.PurchasePrice = input.PurchasePrice

	if err := s.db.Save(asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionUpdate, asset.ID)
	return asset, nil
}

// DeleteAsset removes an asset.
func (s *assetService) DeleteAsset(userID, assetID uint) error {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(asset).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(userID, realtime.ActionDelete, assetID)
	return nil
}

// Summary computes the unified patrimony valuation: flat assets contribute
// their amount in their own currency, priced assets contribute quantity times
// the current market price (zero when unknown — partial price data degrades
// to an undercount, never an error), and USD holdings are unified into ARS
// through the venta rate.
func (s *assetService) Summary(ctx context.Context, userID uint) (*AssetSummary, error) {
	assets, err := s.GetUserAssets(userID)
	if err != nil {
		return nil, err
	}

	rate, err := s.rateService.GetRate(ctx)
	if err != nil {
		return nil, err
	}

	var cryptoTickers, cedearTickers []string
	for _, a := range assets {
		if !a.Type.Priced() || a.Ticker == "" {
			continue
		}
		switch a.Type {
		case models.AssetTypeCrypto:
			cryptoTickers = append(cryptoTickers, a.Ticker)
		case models.AssetTypeCedear:
			cedearTickers = append(cedearTickers, a.Ticker)
		}
	}

	cryptoPrices := s.cryptoPrices.GetPrices(ctx, cryptoTickers)
	cedearPrices := s.cedearPrices.GetPrices(ctx, cedearTickers)

	return Summarize(assets, rate, cryptoPrices, cedearPrices), nil
}

// Summarize aggregates a set of assets into unified ARS/USD totals with the
// given rate and price tables. Pure over its inputs; extracted so valuation
// can be exercised without storage or network.
func Summarize(assets []models.Asset, rate rates.Rate, cryptoPrices, cedearPrices map[string]decimal.Decimal) *AssetSummary {
	summary := &AssetSummary{Assets: make([]AssetValuation, 0, len(assets))}

	for _, a := range assets {
		value := a.Amount
		var gain *decimal.Decimal

		if a.Type.Priced() {
			var price decimal.Decimal
			switch a.Type {
			case models.AssetTypeCrypto:
				price = cryptoPrices[a.Ticker]
			case models.AssetTypeCedear:
				price = cedearPrices[a.Ticker]
			}
			value = a.Quantity.Mul(price)

			if a.PurchasePrice != nil {
				g := value.Sub(a.Quantity.Mul(*a.PurchasePrice))
				gain = &g
			}
		}

		switch a.Currency {
		case models.CurrencyARS:
			summary.TotalARS = summary.TotalARS.Add(value)
		case models.CurrencyUSD:
			summary.TotalUSD = summary.TotalUSD.Add(value)
		}

		summary.Assets = append(summary.Assets, AssetValuation{
			AssetID:  a.ID,
			Name:     a.Name,
			Type:     a.Type,
			Currency: a.Currency,
			Value:    value,
			Gain:     gain,
		})
	}

	summary.TotalUnifiedARS = summary.TotalARS.Add(summary.TotalUSD.Mul(rate.Venta))
	return summary
}

func (s *assetService) publish(userID uint, action string, id uint) {
	if s.hub != nil {
		s.hub.Publish(userID, realtime.Event{Table: "assets", Action: action, ID: id})
	}
}

func validateAssetInput(input AssetInput) error {
	if input.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	switch input.Type {
	case models.AssetTypeCash, models.AssetTypeBank, models.AssetTypeInvestment,
		models.AssetTypeCrypto, models.AssetTypeCedear, models.AssetTypeOther:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid asset type")
	}
	if input.Currency != models.CurrencyARS && input.Currency != models.CurrencyUSD {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be ARS or USD")
	}
	if input.Type.Priced() {
		if input.Ticker == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "ticker is required for priced assets")
		}
		if !input.Quantity.IsPositive() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than zero")
		}
	} else if input.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
	}
	return nil
}
