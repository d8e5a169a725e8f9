package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound               = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists          = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation             = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation       = new(ErrCodeInvalidOperation, "invalid operation")
	ErrPermissionDenied       = new(ErrCodePermissionDenied, "permission denied")
	ErrInvalidWalletReference = new(ErrCodeInvalidWalletReference, "invalid wallet reference")
	ErrWalletFrozen           = new(ErrCodeWalletFrozen, "wallet is frozen")
	ErrInsufficientFunds      = new(ErrCodeInsufficientFunds, "insufficient funds")
	ErrProcessorUnavailable   = new(ErrCodeProcessorUnavailable, "payment processor unavailable")
	ErrSignatureInvalid       = new(ErrCodeSignatureInvalid, "signature verification failed")
	ErrDatabase               = new(ErrCodeDatabase, "database error")
	ErrSystem                 = new(ErrCodeSystemError, "system error")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:               http.StatusNotFound,
		ErrAlreadyExists:          http.StatusConflict,
		ErrValidation:             http.StatusBadRequest,
		ErrInvalidOperation:       http.StatusBadRequest,
		ErrPermissionDenied:       http.StatusForbidden,
		ErrInvalidWalletReference: http.StatusBadRequest,
		ErrWalletFrozen:           http.StatusConflict,
		ErrInsufficientFunds:      http.StatusPaymentRequired,
		ErrProcessorUnavailable:   http.StatusServiceUnavailable,
		ErrSignatureInvalid:       http.StatusBadRequest,
		ErrDatabase:               http.StatusInternalServerError,
		ErrSystem:                 http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound               = "not_found"
	ErrCodeAlreadyExists          = "already_exists"
	ErrCodeValidation             = "validation_error"
	ErrCodeInvalidOperation       = "invalid_operation"
	ErrCodePermissionDenied       = "permission_denied"
	ErrCodeInvalidWalletReference = "invalid_wallet_reference"
	ErrCodeWalletFrozen           = "wallet_frozen"
	ErrCodeInsufficientFunds      = "insufficient_funds"
	ErrCodeProcessorUnavailable   = "processor_unavailable"
	ErrCodeSignatureInvalid       = "signature_verification_failed"
	ErrCodeDatabase               = "database_error"
	ErrCodeSystemError            = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// new creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error.
// On the spend and purchase paths this is the duplicate-idempotency-key signal
// and callers treat it as success-no-op, not as a failure.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsWalletFrozen checks if an error is a frozen wallet rejection
func IsWalletFrozen(err error) bool {
	return errors.Is(err, ErrWalletFrozen)
}

// IsInsufficientFunds checks if an error is an insufficient funds rejection
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsProcessorUnavailable checks if an error is a fast-fail from an open circuit
func IsProcessorUnavailable(err error) bool {
	return errors.Is(err, ErrProcessorUnavailable)
}

// IsSignatureInvalid checks if an error is a webhook signature failure
func IsSignatureInvalid(err error) bool {
	return errors.Is(err, ErrSignatureInvalid)
}

// IsDatabase checks if an error is a database error
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
