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

// ErrForbidden indicates that the caller is not entitled to act on the resource.
var ErrForbidden = errors.New("access to this resource is forbidden")

// ErrInvalidState indicates that an account is not in the state an operation
// requires, e.g. a debit against a blocked or archived account.
var ErrInvalidState = errors.New("resource is not in a valid state for this operation")

// ErrInsufficientFunds indicates that a debit exceeds the source account balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrExternalDependency indicates that an external collaborator (archive store,
// notification gateway) was unreachable or failed.
var ErrExternalDependency = errors.New("external dependency failure")

// AppError carries an HTTP-ish status code alongside a message and an optional cause.
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

// NewAppError creates a new AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
