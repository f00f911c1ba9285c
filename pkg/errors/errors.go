package errors

import "fmt"

// ErrorType represents different types of errors that can occur during a harvest
type ErrorType string

const (
	ErrorTypeContainerNotFound     ErrorType = "container_not_found"
	ErrorTypeExtractionUnavailable ErrorType = "extraction_unavailable"
	ErrorTypeBrowser               ErrorType = "browser"
	ErrorTypeConfig                ErrorType = "config"
	ErrorTypeExport                ErrorType = "export"
	ErrorTypeCancelled             ErrorType = "cancelled"
	ErrorTypeUnknown               ErrorType = "unknown"
)

// Sentinel errors for use with errors.Is. Any *Error with the same Type matches.
var (
	ErrContainerNotFound     = &Error{Type: ErrorTypeContainerNotFound, Message: "scroll container not found"}
	ErrExtractionUnavailable = &Error{Type: ErrorTypeExtractionUnavailable, Message: "no extraction function"}
	ErrCancelled             = &Error{Type: ErrorTypeCancelled, Message: "cancelled by user"}
)

// Error represents a harvest error with type information
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

// New creates a typed error
func New(t ErrorType, msg string) *Error {
	return &Error{Type: t, Message: msg}
}

// Wrap creates a typed error around an underlying cause
func Wrap(t ErrorType, msg string, err error) *Error {
	return &Error{Type: t, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// IsRetryable checks if an error type should be retried.
// A missing container is retried because the page may still be rendering
// or the emoji picker may need a moment to open.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeContainerNotFound, ErrorTypeBrowser:
		return true
	case ErrorTypeConfig, ErrorTypeExport, ErrorTypeExtractionUnavailable, ErrorTypeCancelled:
		return false
	default:
		return false
	}
}
