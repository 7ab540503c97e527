package benchmark

import (
	"fmt"
	"net/http"

	"github.com/chemiclast/rasorite/internal/errors"
)

const (
	// Authentication Errors
	ErrCookie = errors.ErrorCode("benchmark_missing_cookie")

	// Request Errors
	ErrRequest        = errors.ErrorCode("benchmark_request_failed")
	ErrStatus         = errors.ErrorCode("benchmark_bad_status")
	ErrRetriesExhaust = errors.ErrorCode("benchmark_retries_exhausted")

	// Response Errors
	ErrInvalidResponse = errors.ErrorCode("benchmark_invalid_response")
)

// StatusError is a non-2xx reply from the benchmark API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("benchmark api returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRetryable reports whether the request may succeed if repeated.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
