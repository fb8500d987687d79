package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeValidation covers malformed or inconsistent input
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeNotFound covers references to absent items, nodes, or edge pairs
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeInvalidHierarchy covers level mismatches, cycles, and
	// leaf-attach attempts in the task tree
	ErrorTypeInvalidHierarchy ErrorType = "INVALID_HIERARCHY"

	// ErrorTypeDegradedBackend flags a recoverable collaborator outage
	// (e.g. the semantic index); never surfaced to end callers
	ErrorTypeDegradedBackend ErrorType = "DEGRADED_BACKEND"

	// ErrorTypePersistence covers durable store write failures; these
	// always propagate since they affect durability guarantees
	ErrorTypePersistence ErrorType = "PERSISTENCE"

	// ErrorTypeUnauthorized covers failed authentication
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeInternal covers everything else
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError is the application error type carried across layers
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches structured details to the error
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error for a resource
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewInvalidHierarchyError creates a hierarchy violation error
func NewInvalidHierarchyError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidHierarchy,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewDegradedBackendError flags a collaborator outage
func NewDegradedBackendError(backend string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeDegradedBackend,
		Message:    fmt.Sprintf("backend '%s' is unavailable", backend),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewPersistenceError creates a durable store failure error
func NewPersistenceError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypePersistence,
		Message:    fmt.Sprintf("persistence operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Wrap wraps an error with additional context, preserving the type
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:       appErr.Type,
			Message:    fmt.Sprintf("%s: %s", message, appErr.Message),
			Details:    appErr.Details,
			Cause:      appErr.Cause,
			HTTPStatus: appErr.HTTPStatus,
		}
	}

	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsInvalidHierarchy checks if an error is a hierarchy violation
func IsInvalidHierarchy(err error) bool { return isType(err, ErrorTypeInvalidHierarchy) }

// IsDegradedBackend checks if an error flags a collaborator outage
func IsDegradedBackend(err error) bool { return isType(err, ErrorTypeDegradedBackend) }

// IsPersistence checks if an error is a durable store failure
func IsPersistence(err error) bool { return isType(err, ErrorTypePersistence) }

// HTTPStatus maps an error to the status code handlers should emit
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
