package types

import "fmt"

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Input errors
	ErrValidation           ErrorCode = "VALIDATION"
	ErrDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"

	// State errors
	ErrInvalidState       ErrorCode = "INVALID_STATE"
	ErrAccountNotEligible ErrorCode = "ACCOUNT_NOT_ELIGIBLE"
	ErrNotFound           ErrorCode = "NOT_FOUND"

	// Ledger errors
	ErrInsufficientFunds  ErrorCode = "INSUFFICIENT_FUNDS"
	ErrDailyLimitExceeded ErrorCode = "DAILY_LIMIT_EXCEEDED"

	// System errors
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrDatabaseError    ErrorCode = "DATABASE_ERROR"
)

// BankError represents a bank-related error
type BankError struct {
	Code    ErrorCode
	Message string
	Field   string // Offending field for validation errors, if any
	Err     error  // Underlying error, if any
}

// Error implements the error interface
func (e *BankError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *BankError) Unwrap() error {
	return e.Err
}

// NewBankError creates a new BankError
func NewBankError(code ErrorCode, message string) *BankError {
	return &BankError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION error naming the offending field
func NewValidationError(field, message string) *BankError {
	return &BankError{
		Code:    ErrValidation,
		Message: message,
		Field:   field,
	}
}

// NewDuplicateApplicationError reports a registration conflict. Field carries
// the existing account's status so callers can explain which state blocked
// the new application.
func NewDuplicateApplicationError(status string) *BankError {
	return &BankError{
		Code:    ErrDuplicateApplication,
		Message: fmt.Sprintf("an application already exists with status %q", status),
		Field:   status,
	}
}

// WrapError wraps an existing error in a BankError
func WrapError(code ErrorCode, message string, err error) *BankError {
	return &BankError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsBankError checks if an error is a BankError and has a specific code
func IsBankError(err error, code ErrorCode) bool {
	var bankErr *BankError
	if err == nil {
		return false
	}
	if ok := As(err, &bankErr); !ok {
		return false
	}
	return bankErr.Code == code
}

// As is a helper function to safely type assert an error to a BankError
func As(err error, target **BankError) bool {
	if target == nil {
		return false
	}
	if bankErr, ok := err.(*BankError); ok {
		*target = bankErr
		return true
	}
	return false
}
