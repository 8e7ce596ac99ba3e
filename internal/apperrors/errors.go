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

// ErrStorage indicates that the persistence layer failed (connection loss,
// constraint violation). Callers do not retry internally; retry policy
// belongs to the invoking job or request handler.
var ErrStorage = errors.New("storage error")

// ErrDataIntegrity indicates that stored data violates an invariant the code
// relies on (e.g. a non-positive exchange rate).
var ErrDataIntegrity = errors.New("data integrity error")

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

// NewAppError creates a generic AppError. A nil cause defaults to ErrStorage
// so repository failures remain matchable via errors.Is.
func NewAppError(code int, message string, err error) *AppError {
	if err == nil {
		err = ErrStorage
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewValidationError creates an AppError that matches errors.Is(err, ErrValidation).
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}

// NewStorageError creates an AppError that matches errors.Is(err, ErrStorage)
// while preserving the underlying driver error.
func NewStorageError(message string, cause error) *AppError {
	return &AppError{Code: 500, Message: message, Err: fmt.Errorf("%w: %w", ErrStorage, cause)}
}

// NewDataIntegrityError creates an AppError that matches errors.Is(err, ErrDataIntegrity).
func NewDataIntegrityError(message string) *AppError {
	return &AppError{Code: 500, Message: message, Err: ErrDataIntegrity}
}
