// Package errors provides custom error types for the Billetera API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Exchange rate errors. RateUnavailable means no fresh or stale snapshot
// could be obtained; ARS conversion and recurring processing cannot proceed.
var (
	ErrRateUnavailable = &AppError{Code: "RATE_UNAVAILABLE", Message: "Exchange rate is currently unavailable", StatusCode: http.StatusServiceUnavailable}
)

// Ledger errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
)

// Recurring definition errors.
var (
	ErrRecurringNotFound    = &AppError{Code: "RECURRING_NOT_FOUND", Message: "Recurring definition not found", StatusCode: http.StatusNotFound}
	ErrInvalidRecurringKind = &AppError{Code: "INVALID_RECURRING_KIND", Message: "Recurring kind must be income or expense", StatusCode: http.StatusBadRequest}
)

// Asset errors.
var (
	ErrAssetNotFound = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
)

// Shortcut errors.
var (
	ErrShortcutNotFound = &AppError{Code: "SHORTCUT_NOT_FOUND", Message: "Shortcut not found", StatusCode: http.StatusNotFound}
)

// Import errors. Both abort the import before any data is cleared or written.
var (
	ErrImportUnsupportedVersion = &AppError{Code: "IMPORT_UNSUPPORTED_VERSION", Message: "Unsupported backup version", StatusCode: http.StatusBadRequest}
	ErrImportInvalidFormat      = &AppError{Code: "IMPORT_INVALID_FORMAT", Message: "Invalid backup format", StatusCode: http.StatusBadRequest}
)
