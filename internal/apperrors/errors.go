package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal is returned when a failure is not attributable to the caller.
var ErrInternal = errors.New("internal error")

// Ledger and reservation errors. Every one of these is raised before any state
// is written, except ErrIntegrityRepairTriggered which is only ever logged.
var (
	ErrInsufficientStock        = errors.New("insufficient stock")
	ErrInvalidQuantity          = errors.New("quantity must be at least 1")
	ErrOverRelease              = errors.New("release exceeds the quantity reserved for this reference")
	ErrReservationNotActive     = errors.New("reservation is not active")
	ErrReservationLinked        = errors.New("reservation is already linked to a credit account")
	ErrEmptyLineItems           = errors.New("credit account needs at least one line item")
	ErrInvalidAmount            = errors.New("amount must be greater than zero")
	ErrAmountExceedsBalance     = errors.New("amount exceeds the remaining balance")
	ErrAccountNotFound          = errors.New("credit account not found")
	ErrAccountNotActive         = errors.New("credit account is not active")
	ErrIntegrityRepairTriggered = errors.New("credit account totals were inconsistent and have been repaired")
)

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
