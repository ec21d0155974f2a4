package api

import (
	"time"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"` // seconds, rate-limit rejections only
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ReadyResponse reports readiness of downstream dependencies.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// BatchResponse is the stored-batch view returned by the lookup endpoint.
// Result is only present once the batch has completed.
type BatchResponse struct {
	BatchID     string                 `json:"batchId"`
	Status      domain.BatchStatus     `json:"status"`
	ReviewCount int                    `json:"reviewCount"`
	Result      *domain.AnalysisResult `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}
