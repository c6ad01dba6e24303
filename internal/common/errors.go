package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDatabase         = errors.New("database error")
	ErrStoreUnavailable = errors.New("record store is not configured")
	ErrExtraction       = errors.New("extraction failed")
	ErrRasterize        = errors.New("pdf rasterization failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// StoreError wraps a database failure so callers can match ErrDatabase while
// the driver message is kept verbatim.
func StoreError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return NewAppError("STORE_ERROR", op, errors.Join(ErrDatabase, cause))
}

// InvalidInputf builds an ErrInvalidInput AppError with a formatted message.
func InvalidInputf(format string, args ...any) error {
	return NewAppError("INVALID_INPUT", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// PublicMessage returns the message suitable for API clients: the AppError
// message plus its cause for store errors, or err.Error() otherwise.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Code == "STORE_ERROR" && appErr.Cause != nil {
			// surface the driver message, not the sentinel
			return fmt.Sprintf("%s: %v", appErr.Message, unwrapDriver(appErr.Cause))
		}
		return appErr.Message
	}
	return err.Error()
}

func unwrapDriver(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !errors.Is(e, ErrDatabase) {
				return e
			}
		}
	}
	return err
}
