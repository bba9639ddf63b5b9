package resolver

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of resolution failures
type ErrorType int

const (
	ErrorConnection ErrorType = iota
	ErrorHTTPStatus
	ErrorParse
	ErrorAPI
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorConnection:
		return "connection_failure"
	case ErrorHTTPStatus:
		return "http_status"
	case ErrorParse:
		return "parse_failure"
	case ErrorAPI:
		return "api_error"
	default:
		return "unknown"
	}
}

// ResolveError represents a structured error from a resolution request
type ResolveError struct {
	Type    ErrorType
	Message string
	Status  int    // HTTP status code, set for ErrorHTTPStatus
	Body    string // truncated response body, set for ErrorHTTPStatus
	Cause   error
}

// Error implements the error interface
func (re *ResolveError) Error() string {
	if re.Type == ErrorHTTPStatus {
		return fmt.Sprintf("%s: status %d: %s", re.Type.String(), re.Status, re.Message)
	}
	if re.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", re.Type.String(), re.Message, re.Cause)
	}
	return fmt.Sprintf("%s: %s", re.Type.String(), re.Message)
}

// Unwrap returns the underlying cause error
func (re *ResolveError) Unwrap() error {
	return re.Cause
}

// NewResolveError creates a new ResolveError with the specified type and message
func NewResolveError(errorType ErrorType, message string) *ResolveError {
	return &ResolveError{
		Type:    errorType,
		Message: message,
	}
}

// NewResolveErrorWithCause creates a new ResolveError with a cause
func NewResolveErrorWithCause(errorType ErrorType, message string, cause error) *ResolveError {
	return &ResolveError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// IsResolveError checks if an error is a ResolveError and optionally of a specific type
func IsResolveError(err error, errorType ...ErrorType) bool {
	var re *ResolveError
	if !errors.As(err, &re) {
		return false
	}
	if len(errorType) == 0 {
		return true
	}
	for _, et := range errorType {
		if re.Type == et {
			return true
		}
	}
	return false
}
