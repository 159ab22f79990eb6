package service

import (
	"fmt"

	"github.com/phrazzld/hanzi-api/internal/domain"
)

// ErrConflictingFilter is returned when a listing asks for one folder and for
// uncategorized cards at the same time.
var ErrConflictingFilter = fmt.Errorf("%w: folder_id and uncategorized cannot be combined", domain.ErrValidation)

// ServiceError adds the failing operation to an error from a lower layer.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
