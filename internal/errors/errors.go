// Package errors provides the error taxonomy of the budget planner API.
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

// Budget errors.
var (
	ErrBudgetNotFound  = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrDuplicateBudget = &AppError{Code: "DUPLICATE_BUDGET", Message: "A budget with this name already exists for that year", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
	ErrCategoryInUse     = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing entries", StatusCode: http.StatusConflict}
)

// Entry errors.
var (
	ErrEntryNotFound  = &AppError{Code: "ENTRY_NOT_FOUND", Message: "Entry not found", StatusCode: http.StatusNotFound}
	ErrInvalidAmounts = &AppError{Code: "INVALID_AMOUNTS", Message: "At least one month must have an amount > 0", StatusCode: http.StatusBadRequest}
	ErrNegativeAmount = &AppError{Code: "NEGATIVE_AMOUNT", Message: "Amounts cannot be negative", StatusCode: http.StatusBadRequest}
	ErrInvalidPattern = &AppError{Code: "INVALID_PATTERN", Message: "Unsupported amount pattern", StatusCode: http.StatusBadRequest}
	ErrInvalidMonth   = &AppError{Code: "INVALID_MONTH", Message: "Month must be between 1 and 12", StatusCode: http.StatusBadRequest}
)

// Import errors.
var (
	ErrCSVEmpty     = &AppError{Code: "CSV_EMPTY", Message: "CSV file is empty", StatusCode: http.StatusBadRequest}
	ErrCSVMalformed = &AppError{Code: "CSV_MALFORMED", Message: "CSV file could not be read", StatusCode: http.StatusBadRequest}
	ErrCSVInvalid   = &AppError{Code: "CSV_INVALID", Message: "CSV file contains invalid rows", StatusCode: http.StatusUnprocessableEntity}
	ErrImportFailed = &AppError{Code: "IMPORT_FAILED", Message: "Import failed", StatusCode: http.StatusInternalServerError}
)

// Transfer errors.
var (
	ErrSameBudgetTransfer = &AppError{Code: "SAME_BUDGET_TRANSFER", Message: "Cannot transfer a budget into itself", StatusCode: http.StatusBadRequest}
	ErrEmptyTransfer      = &AppError{Code: "EMPTY_TRANSFER", Message: "Select entries or balance to transfer", StatusCode: http.StatusBadRequest}
	ErrTransferFailed     = &AppError{Code: "TRANSFER_FAILED", Message: "Transfer failed", StatusCode: http.StatusInternalServerError}
)
