// Package errors provides the error types shared by the FaithLedger services
// and handlers. Services return *AppError (or FieldErrors for form input) so
// handlers can map failures to pages without leaking internal details.
package errors

import (
	"net/http"
	"sort"
	"strings"
)

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

// Is matches another *AppError by code, so wrapped copies of a sentinel
// still satisfy errors.Is(err, ErrX).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

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

// FieldErrors collects per-field validation messages keyed by form field
// name. All problems are reported together so a form can highlight each one.
type FieldErrors map[string]string

// CodeValidationFailed is the code reported for FieldErrors.
const CodeValidationFailed = "VALIDATION_FAILED"

// Error implements the error interface with a stable, sorted rendering.
func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// Err returns f as an error, or nil when no field failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username/email or password. Please try again.", StatusCode: http.StatusUnauthorized}
	ErrInvalidResetLink   = &AppError{Code: "INVALID_RESET_LINK", Message: "Password reset link is invalid or has expired.", StatusCode: http.StatusBadRequest}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrEmailDelivery  = &AppError{Code: "EMAIL_DELIVERY_FAILED", Message: "Failed to send email. Please check your email configuration.", StatusCode: http.StatusBadGateway}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrSubCategoryNotFound = &AppError{Code: "SUBCATEGORY_NOT_FOUND", Message: "Sub-category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse       = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions and cannot be deleted", StatusCode: http.StatusConflict}
	ErrCategoryInactive    = &AppError{Code: "CATEGORY_INACTIVE", Message: "Category is disabled", StatusCode: http.StatusBadRequest}
	ErrSubCategoryInactive = &AppError{Code: "SUBCATEGORY_INACTIVE", Message: "Sub-category is disabled", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount          = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be a positive number.", StatusCode: http.StatusBadRequest}
	ErrCategoryTypeMismatch   = &AppError{Code: "CATEGORY_TYPE_MISMATCH", Message: "Category type does not match the transaction type", StatusCode: http.StatusBadRequest}
	ErrSubCategoryMismatch    = &AppError{Code: "SUBCATEGORY_MISMATCH", Message: "Sub-category does not belong to the selected category", StatusCode: http.StatusBadRequest}
)
