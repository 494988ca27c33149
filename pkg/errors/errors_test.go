package errors

import (
	"testing"
	"time"
)

func TestErrorString(t *testing.T) {
	err := &Error{
		Type:    ErrorTypeServerError,
		Message: "service unavailable",
		Code:    503,
	}

	expected := "jira server_error error (code 503): service unavailable"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		retryable bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeServerError, true},
		{ErrorTypeMalformed, true},
		{ErrorTypeClient, false},
		{ErrorTypeUnknown, false},
	}

	for _, test := range tests {
		t.Run(string(test.errorType), func(t *testing.T) {
			if IsRetryable(test.errorType) != test.retryable {
				t.Errorf("IsRetryable(%s) = %v, want %v", test.errorType, !test.retryable, test.retryable)
			}
		})
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	tests := []struct {
		code      int
		retryable bool
	}{
		{0, true},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{599, true},
		{200, false},
		{400, false},
		{401, false},
		{403, false},
		{404, false},
	}

	for _, test := range tests {
		if IsRetryableStatusCode(test.code) != test.retryable {
			t.Errorf("IsRetryableStatusCode(%d) = %v, want %v", test.code, !test.retryable, test.retryable)
		}
	}
}

func TestRetryAfterHint(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limit exceeded",
		Code:       429,
		RetryAfter: 5 * time.Second,
	}

	if err.RetryAfter != 5*time.Second {
		t.Errorf("Expected retry-after hint of 5s, got %v", err.RetryAfter)
	}
}
