package analyzer

import (
	"fmt"
	"regexp"

	"github.com/BRANOPODCAST/ReviewScope/internal/preprocess"
)

// Request bounds, mirrored in the rejection messages.
const maxContentLen = 5000

// uuidPattern accepts UUID versions 1-5, case-insensitive.
var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// validate checks the inbound request in a fixed order, each failure a
// distinct rejection. It runs before the rate limiter and before any
// upstream call.
func validate(req Request) error {
	if req.Reviews == nil {
		return &ValidationError{Message: "reviews must be an array"}
	}
	if len(req.Reviews) == 0 || len(req.Reviews) > preprocess.MaxBatchSize {
		return &ValidationError{Message: fmt.Sprintf("provide 1-%d reviews", preprocess.MaxBatchSize)}
	}
	for _, review := range req.Reviews {
		if review.Content == "" {
			return &ValidationError{Message: "invalid review format - content must be a non-empty string"}
		}
		if len(review.Content) > maxContentLen {
			return &ValidationError{Message: fmt.Sprintf("review too long (max %d characters)", maxContentLen)}
		}
	}
	if !uuidPattern.MatchString(req.BatchID) {
		return &ValidationError{Message: "invalid batch ID format"}
	}
	return nil
}
