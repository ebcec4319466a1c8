package remote

import (
	"fmt"
	"time"
)

// RateLimitedError is returned once the retry budget for a 429 response is
// exhausted. RetryAfter is the remote's hint, parsed from the Retry-After
// header (zero if the remote didn't send one).
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("remote rate limited, retry after %s", e.RetryAfter)
}

// AuthError wraps a terminal authentication failure (expired/invalid
// credentials); never retried.
type AuthError struct {
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("remote authentication failed: %v", e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// UnavailableError wraps a retriable transport/5xx failure after the retry
// budget is exhausted.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("remote catalog unavailable: %v", e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }
