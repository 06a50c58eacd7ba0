package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeHintAlreadyUsed     = "HINT_ALREADY_USED"
	ErrCodeAttemptLimitReached = "ATTEMPT_LIMIT_REACHED"
	ErrCodePersistence         = "PERSISTENCE_ERROR"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// Sentinels for errors.Is matching; AppError.Is compares by code.
var (
	ErrNotFound            = &AppError{Code: ErrCodeNotFound}
	ErrInvalidState        = &AppError{Code: ErrCodeInvalidState}
	ErrHintAlreadyUsed     = &AppError{Code: ErrCodeHintAlreadyUsed}
	ErrAttemptLimitReached = &AppError{Code: ErrCodeAttemptLimitReached}
	ErrPersistence         = &AppError{Code: ErrCodePersistence}
	ErrValidation          = &AppError{Code: ErrCodeValidation}
	ErrUnauthorized        = &AppError{Code: ErrCodeUnauthorized}
	ErrConflict            = &AppError{Code: ErrCodeConflict}
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "INVALID_STATE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// As extracts the AppError from err, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is is errors.Is, re-exported so callers importing this package under its
// own name do not also need the standard library one.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewInvalidStateError is returned when an operation does not apply to the
// current state of an attempt.
func NewInvalidStateError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidState,
		Message: message,
		Status:  409,
	}
}

func NewHintAlreadyUsedError(hintIndex int) *AppError {
	return &AppError{
		Code:    ErrCodeHintAlreadyUsed,
		Message: fmt.Sprintf("hint %d already used", hintIndex),
		Status:  409,
	}
}

func NewAttemptLimitReachedError(puzzleID, maxAttempts int) *AppError {
	return &AppError{
		Code:    ErrCodeAttemptLimitReached,
		Message: fmt.Sprintf("puzzle %d allows %d attempts", puzzleID, maxAttempts),
		Status:  409,
	}
}

// NewPersistenceError wraps a storage failure. Nothing from the failed
// operation has been kept, so the caller may retry it.
func NewPersistenceError(err error) *AppError {
	return &AppError{
		Code:    ErrCodePersistence,
		Message: "failed to persist player progress",
		Status:  500,
		Err:     err,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Status:  401,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  409,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}
