// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("ledger_currency", validateLedgerCurrency)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("asset_type", validateAssetType)
		_ = v.RegisterValidation("recurring_kind", validateRecurringKind)
		_ = v.RegisterValidation("day_of_month", validateDayOfMonth)
	}
}

// The ledger only deals in pesos and dollars; anything else is rejected at binding.
func validateLedgerCurrency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ARS", "USD":
		return true
	}
	return false
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateAssetType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "cash", "bank", "investment", "crypto", "cedear", "other":
		return true
	}
	return false
}

func validateRecurringKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

// Days beyond a short month's length (e.g. 31 in April) are allowed here;
// such definitions simply never match that month.
func validateDayOfMonth(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= 1 && day <= 31
}
