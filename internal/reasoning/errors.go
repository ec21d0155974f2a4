package reasoning

import (
	"errors"
	"fmt"
)

// Sentinel errors for the distinct upstream failure kinds. None of these
// are retried internally; the orchestrator surfaces the first failure as a
// terminal pipeline error.
var (
	// ErrRateLimited is the upstream provider's own 429, distinct from
	// this service's admission limiter.
	ErrRateLimited = errors.New("reasoning service rate limited")
	// ErrQuotaExhausted is the provider's 402: credits are gone.
	ErrQuotaExhausted = errors.New("reasoning service quota exhausted")
	// ErrUnavailable covers network and transport failures.
	ErrUnavailable = errors.New("reasoning service unavailable")
	// ErrMissingAPIKey indicates a deployment defect, not a usage error.
	ErrMissingAPIKey = errors.New("reasoning service API key not configured")
)

// UpstreamError is any other non-success HTTP status from the provider.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("reasoning service returned %d", e.StatusCode)
}
