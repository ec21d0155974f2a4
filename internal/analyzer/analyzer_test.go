//nolint:testpackage // Testing internal orchestration requires same package access
package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
	"github.com/BRANOPODCAST/ReviewScope/internal/logging"
	"github.com/BRANOPODCAST/ReviewScope/internal/pipeline"
	"github.com/BRANOPODCAST/ReviewScope/internal/ratelimit"
	"github.com/BRANOPODCAST/ReviewScope/internal/reasoning"
)

const validBatchID = "3f2b8c1a-9d4e-4f6a-8b2c-1d3e5f7a9b0c"

// stubRunner replays a canned pipeline outcome and records the batch it saw.
type stubRunner struct {
	findings *pipeline.Findings
	err      error
	readyErr error
	reviews  []domain.PreprocessedReview
	calls    int
}

func (s *stubRunner) Ready() error {
	return s.readyErr
}

func (s *stubRunner) Run(_ context.Context, reviews []domain.PreprocessedReview) (*pipeline.Findings, error) {
	s.calls++
	s.reviews = reviews
	if s.err != nil {
		return nil, s.err
	}
	return s.findings, nil
}

func lowBandFindings() *pipeline.Findings {
	score := 35.0
	return &pipeline.Findings{
		Pattern: domain.PatternFindings{
			LinguisticSimilarityScore: &score,
			Observations:              []string{"varied vocabulary"},
		},
		Coordination: domain.CoordinationFindings{
			Clusters: []domain.Cluster{
				{ClusterID: 1, ReviewIndices: []int{1, 2}, CoordinationLikelihood: "low"},
			},
		},
		Integrity: domain.IntegrityFindings{
			ManipulationBand:      "Low",
			KeySignals:            []domain.KeySignal{{Signal: "shared opener", Significance: "low", AffectedReviews: []int{1, 2}}},
			ConfidenceExplanation: "Small batch limits confidence.",
		},
	}
}

func newService(runner Runner, limiter *ratelimit.Limiter) *Service {
	if limiter == nil {
		limiter = ratelimit.New()
	}
	return NewService(runner, limiter, nil, logging.NewNop())
}

func validRequest() Request {
	return Request{
		BatchID: validBatchID,
		Reviews: []domain.RawReview{
			{Content: "Great product, love it!", Rating: 5, ReviewDate: "2024-03-01T10:00:00Z"},
			{Content: "Das Produkt ist sehr gut und der Versand war schnell.", Rating: 4, ReviewDate: "2024-03-01T15:00:00Z"},
			{Content: "Solid quality for the price.", Rating: 4, ReviewDate: "2024-03-03T09:00:00Z"},
		},
	}
}

func TestAnalyze_EndToEnd(t *testing.T) {
	runner := &stubRunner{findings: lowBandFindings()}
	svc := newService(runner, nil)

	result, err := svc.Analyze(context.Background(), "client-a", validRequest())
	require.NoError(t, err)

	assert.Equal(t, validBatchID, result.BatchID)
	assert.Equal(t, 3, result.ReviewCount)
	assert.False(t, result.Degraded)

	// Preprocessing summary: distinct languages in first-seen order.
	assert.Equal(t, []string{"en", "de"}, result.Stages.Preprocessing.Languages)
	assert.Equal(t, 3, result.Stages.Preprocessing.ReviewCount)
	assert.Positive(t, result.Stages.Preprocessing.AverageWordCount)

	// Summary digest mirrors the integrity and coordination findings.
	assert.Equal(t, "Low", result.Summary.ManipulationBand)
	require.Len(t, result.Summary.KeySignals, 1)
	assert.Equal(t, "shared opener", result.Summary.KeySignals[0].Signal)
	require.Len(t, result.Summary.Clusters, 1)

	// Two reviews share a calendar day, one is two days later.
	require.Len(t, result.Summary.TimelineData, 2)
	assert.Equal(t, domain.TimelinePoint{Date: "2024-03-01", Count: 2}, result.Summary.TimelineData[0])
	assert.Equal(t, domain.TimelinePoint{Date: "2024-03-03", Count: 1}, result.Summary.TimelineData[1])

	// The pipeline received the preprocessed batch, not the raw one.
	require.Len(t, runner.reviews, 3)
	assert.Equal(t, "great product, love it!", runner.reviews[0].NormalizedContent)
}

func TestAnalyze_DegradedStageSurfacesInEnvelope(t *testing.T) {
	findings := lowBandFindings()
	findings.Pattern = domain.PatternFindings{
		ParseFailure: domain.ParseFailure{
			Error: reasoning.ParseFailureMessage,
			Raw:   "no structured output",
		},
	}
	svc := newService(&stubRunner{findings: findings}, nil)

	result, err := svc.Analyze(context.Background(), "client-a", validRequest())
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, reasoning.ParseFailureMessage, result.Stages.PatternDiscovery.Error)
	assert.Equal(t, "Low", result.Summary.ManipulationBand, "summary still built from surviving stages")
}

func TestAnalyze_EmptyFindingsDefaultEnvelope(t *testing.T) {
	svc := newService(&stubRunner{findings: &pipeline.Findings{}}, nil)

	result, err := svc.Analyze(context.Background(), "client-a", validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Unknown", result.Summary.ManipulationBand)
	assert.NotNil(t, result.Summary.KeySignals)
	assert.Empty(t, result.Summary.KeySignals)
	assert.NotNil(t, result.Summary.Clusters)
	assert.NotNil(t, result.Summary.TimelineData)
}

func TestAnalyze_PipelineFailurePropagates(t *testing.T) {
	svc := newService(&stubRunner{err: &pipeline.StageError{
		Stage: pipeline.StageCoordinationAnalysis,
		Err:   reasoning.ErrRateLimited,
	}}, nil)

	result, err := svc.Analyze(context.Background(), "client-a", validRequest())
	require.Nil(t, result)
	assert.ErrorIs(t, err, reasoning.ErrRateLimited)
}

func TestAnalyze_RateLimitRejection(t *testing.T) {
	limiter := ratelimit.New(ratelimit.WithQuota(1))
	runner := &stubRunner{findings: lowBandFindings()}
	svc := newService(runner, limiter)

	_, err := svc.Analyze(context.Background(), "client-a", validRequest())
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), "client-a", validRequest())
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.InDelta(t, time.Hour.Seconds(), rateErr.RetryAfter.Seconds(), 1)
	assert.Equal(t, 1, runner.calls, "rejected request never reaches the pipeline")

	// Another client is unaffected.
	_, err = svc.Analyze(context.Background(), "client-b", validRequest())
	assert.NoError(t, err)
}

func TestAnalyze_UnconfiguredBackendFailsFastWithoutQuota(t *testing.T) {
	limiter := ratelimit.New(ratelimit.WithQuota(1))
	runner := &stubRunner{findings: lowBandFindings(), readyErr: reasoning.ErrMissingAPIKey}
	svc := newService(runner, limiter)

	_, err := svc.Analyze(context.Background(), "client-a", validRequest())
	require.ErrorIs(t, err, reasoning.ErrMissingAPIKey)
	assert.Equal(t, 0, runner.calls, "no stage runs without a credential")

	var stageErr *pipeline.StageError
	assert.False(t, errors.As(err, &stageErr), "configuration defect is not a stage failure")

	// The doomed request spent no quota.
	runner.readyErr = nil
	_, err = svc.Analyze(context.Background(), "client-a", validRequest())
	assert.NoError(t, err)
}

func TestAnalyze_ValidationRunsBeforeAdmission(t *testing.T) {
	limiter := ratelimit.New(ratelimit.WithQuota(1))
	svc := newService(&stubRunner{findings: lowBandFindings()}, limiter)

	bad := validRequest()
	bad.BatchID = "not-a-uuid"
	_, err := svc.Analyze(context.Background(), "client-a", bad)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	// The malformed request consumed no quota.
	_, err = svc.Analyze(context.Background(), "client-a", validRequest())
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	longContent := strings.Repeat("a", maxContentLen+1)

	tests := []struct {
		name    string
		req     Request
		wantMsg string
	}{
		{
			name:    "nil reviews",
			req:     Request{BatchID: validBatchID},
			wantMsg: "reviews must be an array",
		},
		{
			name:    "empty reviews",
			req:     Request{BatchID: validBatchID, Reviews: []domain.RawReview{}},
			wantMsg: "provide 1-50 reviews",
		},
		{
			name:    "too many reviews",
			req:     Request{BatchID: validBatchID, Reviews: make([]domain.RawReview, 51)},
			wantMsg: "provide 1-50 reviews",
		},
		{
			name:    "empty content",
			req:     Request{BatchID: validBatchID, Reviews: []domain.RawReview{{Content: ""}}},
			wantMsg: "invalid review format - content must be a non-empty string",
		},
		{
			name:    "content too long",
			req:     Request{BatchID: validBatchID, Reviews: []domain.RawReview{{Content: longContent}}},
			wantMsg: "review too long (max 5000 characters)",
		},
		{
			name:    "missing batch ID",
			req:     Request{Reviews: []domain.RawReview{{Content: "fine"}}},
			wantMsg: "invalid batch ID format",
		},
		{
			name:    "malformed batch ID",
			req:     Request{BatchID: "12345", Reviews: []domain.RawReview{{Content: "fine"}}},
			wantMsg: "invalid batch ID format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.req)
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.wantMsg, valErr.Message)
		})
	}
}

func TestValidate_AcceptsUppercaseUUID(t *testing.T) {
	req := validRequest()
	req.BatchID = strings.ToUpper(validBatchID)
	assert.NoError(t, validate(req))
}

func TestValidate_SizeCountsBytesNotWords(t *testing.T) {
	req := validRequest()
	req.Reviews = []domain.RawReview{{Content: strings.Repeat("a", maxContentLen)}}
	assert.NoError(t, validate(req))
}

func TestAnalyze_MaxBatchTruncation(t *testing.T) {
	// Batch size over 50 is rejected at validation, so truncation only
	// applies when the orchestrator is fed directly at the cap.
	req := validRequest()
	req.Reviews = make([]domain.RawReview, 50)
	for i := range req.Reviews {
		req.Reviews[i] = domain.RawReview{Content: "review body here"}
	}
	runner := &stubRunner{findings: lowBandFindings()}
	svc := newService(runner, nil)

	result, err := svc.Analyze(context.Background(), "client-a", req)
	require.NoError(t, err)
	assert.Equal(t, 50, result.ReviewCount)
	assert.Len(t, runner.reviews, 50)
}

func TestRateLimitError_Message(t *testing.T) {
	err := &RateLimitError{RetryAfter: 90 * time.Second}
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestValidationError_IsNotRetryable(t *testing.T) {
	err := validate(Request{})
	assert.False(t, errors.As(err, new(*RateLimitError)))
}
