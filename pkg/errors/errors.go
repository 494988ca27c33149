package errors

import (
	"fmt"
	"time"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeClient      ErrorType = "client"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeMalformed   ErrorType = "malformed"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a Jira API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	// RetryAfter is the server-provided wait hint on 429 responses,
	// zero when the server sent none.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("jira %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeMalformed:
		return true
	case ErrorTypeClient:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch {
	case statusCode == 0: // Network error
		return true
	case statusCode == 429: // Too Many Requests
		return true
	case statusCode >= 500 && statusCode < 600: // Server errors
		return true
	default:
		return false
	}
}
