package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "billetera/internal/errors"
	"billetera/internal/models"
	"billetera/internal/realtime"
)

// backupVersion is the only version this build reads and writes.
const backupVersion = 1

// BackupData is the payload section of a backup document. Only Transactions
// is mandatory on import; the other sections are optional.
type BackupData struct {
	Transactions      []models.Transaction      `json:"transactions"`
	RecurringIncomes  []models.RecurringIncome  `json:"recurringIncomes,omitempty"`
	RecurringExpenses []models.RecurringExpense `json:"recurringExpenses,omitempty"`
	Shortcuts         []models.Shortcut         `json:"shortcuts,omitempty"`
	Budgets           []models.Budget           `json:"budgets,omitempty"`
	Assets            []models.Asset            `json:"assets,omitempty"`
	Settings          *models.Setting           `json:"settings,omitempty"`
}

// BackupDocument is the versioned JSON export format. Dates serialize as
// RFC 3339 strings.
type BackupDocument struct {
	Version    int        `json:"version"`
	ExportedAt time.Time  `json:"exportedAt"`
	Data       BackupData `json:"data"`
}

// exportService handles versioned JSON backup and restore.
type exportService struct {
	db  *gorm.DB
	hub *realtime.Hub
}

// NewExportService creates a new ExportServicer.
func NewExportService(db *gorm.DB, hub *realtime.Hub) ExportServicer {
	return &exportService{db: db, hub: hub}
}

// Export collects all of the user's data into a backup document.
func (s *exportService) Export(userID uint) (*BackupDocument, error) {
	doc := &BackupDocument{Version: backupVersion, ExportedAt: time.Now().UTC()}

	// An empty ledger still exports as [], not null, so the document
	// round-trips through Import.
	doc.Data.Transactions = []models.Transaction{}

	// Each section gets its own query chain. A shared chain would pin the
	// statement to the first dest and scan transaction rows into every
	// section after it.
	if err := s.db.Where("user_id = ?", userID).Find(&doc.Data.Transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&doc.Data.RecurringIncomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&doc.Data.RecurringExpenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&doc.Data.Shortcuts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&doc.Data.Budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&doc.Data.Assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var setting models.Setting
	if err := s.db.Where("user_id = ?", userID).First(&setting).Error; err == nil {
		doc.Data.Settings = &setting
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return doc, nil
}

// Import validates and restores a backup document. Validation happens before
// any write: an unsupported version or a missing transactions list rejects
// the document with nothing cleared. The restore itself runs in a single DB
// transaction — sections present in the document are wiped and rewritten,
// absent sections are left untouched.
func (s *exportService) Import(userID uint, raw []byte) error {
	var doc BackupDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return apperrors.Wrap(apperrors.ErrImportInvalidFormat, err)
	}

	if doc.Version != backupVersion {
		return apperrors.ErrImportUnsupportedVersion
	}
	if doc.Data.Transactions == nil {
		return apperrors.WithMessage(apperrors.ErrImportInvalidFormat, "Backup is missing the transactions list")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := replaceSection(tx, userID, &models.Transaction{}, doc.Data.Transactions, func(t *models.Transaction) {
			t.ID = 0
			t.UserID = userID
		}); err != nil {
			return err
		}

		if doc.Data.RecurringIncomes != nil {
			if err := replaceSection(tx, userID, &models.RecurringIncome{}, doc.Data.RecurringIncomes, func(r *models.RecurringIncome) {
				r.ID = 0
				r.UserID = userID
			}); err != nil {
				return err
			}
		}

		if doc.Data.RecurringExpenses != nil {
			if err := replaceSection(tx, userID, &models.RecurringExpense{}, doc.Data.RecurringExpenses, func(r *models.RecurringExpense) {
				r.ID = 0
				r.UserID = userID
			}); err != nil {
				return err
			}
		}

		if doc.Data.Shortcuts != nil {
			if err := replaceSection(tx, userID, &models.Shortcut{}, doc.Data.Shortcuts, func(sc *models.Shortcut) {
				sc.ID = 0
				sc.UserID = userID
			}); err != nil {
				return err
			}
		}

		if doc.Data.Budgets != nil {
			if err := replaceSection(tx, userID, &models.Budget{}, doc.Data.Budgets, func(b *models.Budget) {
				b.ID = 0
				b.UserID = userID
			}); err != nil {
				return err
			}
		}

		if doc.Data.Assets != nil {
			if err := replaceSection(tx, userID, &models.Asset{}, doc.Data.Assets, func(a *models.Asset) {
				a.ID = 0
				a.UserID = userID
			}); err != nil {
				return err
			}
		}

		// Stamp the restore time on the user's settings row.
		now := time.Now()
		setting := models.Setting{UserID: userID, DefaultCurrency: models.CurrencyARS}
		if doc.Data.Settings != nil {
			setting.DefaultCurrency = doc.Data.Settings.DefaultCurrency
		}
		setting.LastBackupDate = &now

		var existing models.Setting
		if err := tx.Where("user_id = ?", userID).First(&existing).Error; err == nil {
			existing.DefaultCurrency = setting.DefaultCurrency
			existing.LastBackupDate = &now
			return tx.Save(&existing).Error
		}
		return tx.Create(&setting).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.hub != nil {
		s.hub.Publish(userID, realtime.Event{Table: "transactions", Action: realtime.ActionInsert})
	}
	return nil
}

// replaceSection wipes the user's rows of one model and inserts the imported
// ones. IDs are reassigned on insert so restores cannot collide with other
// users' rows.
func replaceSection[T any](tx *gorm.DB, userID uint, model *T, rows []T, reset func(*T)) error {
	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(model).Error; err != nil {
		return err
	}
	for i := range rows {
		reset(&rows[i])
		if err := tx.Create(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
