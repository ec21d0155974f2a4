package analyzer

import (
	"fmt"
	"time"
)

// ValidationError rejects a malformed or out-of-bounds request. Never
// retried; the caller must fix the input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RateLimitError rejects a request over this service's own admission
// quota. The caller should wait RetryAfter before resubmitting.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %s", e.RetryAfter.Round(time.Second))
}
