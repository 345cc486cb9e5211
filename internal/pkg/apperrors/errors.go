package apperrors

import "errors"

// Error kinds surfaced by the application.
var (
	// ErrConflict marks operations that raced with an equivalent one and
	// found the work already done (duplicate snapshot timestamp, duplicate
	// reporting-log entry). Expected under overlapping invocations.
	ErrConflict = errors.New("conflict")

	// ErrValidation marks malformed input: negative counts, empty codes,
	// unknown statuses. Nothing is written when it is raised.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks lookups against identifiers that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrTransport marks failures of external I/O (feed download, notifier
	// delivery). Never retried internally; the next scheduled invocation is
	// the retry mechanism.
	ErrTransport = errors.New("transport failure")

	// ErrIntegrity marks store-level constraint violations not otherwise
	// classified.
	ErrIntegrity = errors.New("integrity violation")
)

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidation,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// NewTransportError creates a transport error wrapping the cause
func NewTransportError(message string, cause error) error {
	return &CustomError{
		Err:     ErrTransport,
		Message: message,
		Cause:   cause,
	}
}

// NewCustomError creates a CustomError of the given kind, returning the
// concrete type so callers can attach details
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// NewIntegrityError creates an integrity error wrapping the cause
func NewIntegrityError(message string, cause error) error {
	return &CustomError{
		Err:     ErrIntegrity,
		Message: message,
		Cause:   cause,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Cause   error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
