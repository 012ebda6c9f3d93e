package models

import "time"

// Setting holds per-user application settings. One row per user.
type Setting struct {
	Base
	UserID          uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	DefaultCurrency Currency   `gorm:"not null;default:'ARS'" json:"default_currency"`
	LastBackupDate  *time.Time `json:"last_backup_date,omitempty"`
}
