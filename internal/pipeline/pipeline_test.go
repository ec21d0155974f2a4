//nolint:testpackage // Testing internal pipeline requires same package access
package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
	"github.com/BRANOPODCAST/ReviewScope/internal/logging"
	"github.com/BRANOPODCAST/ReviewScope/internal/reasoning"
)

// stubInvoker replays canned responses and records every prompt it sees.
type stubInvoker struct {
	responses []string
	errs      []error
	prompts   []string
	readyErr  error
}

func (s *stubInvoker) Ready() error {
	return s.readyErr
}

func (s *stubInvoker) Invoke(_ context.Context, prompt string) (string, error) {
	call := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if call < len(s.errs) && s.errs[call] != nil {
		return "", s.errs[call]
	}
	if call < len(s.responses) {
		return s.responses[call], nil
	}
	return "{}", nil
}

func testReviews() []domain.PreprocessedReview {
	return []domain.PreprocessedReview{
		{
			RawReview:         domain.RawReview{Content: "Great product, love it!", Rating: 5, ReviewDate: "2024-03-01T10:00:00Z"},
			NormalizedContent: "great product, love it!",
			DetectedLanguage:  "en",
			WordCount:         4,
			HasDate:           true,
		},
		{
			RawReview:         domain.RawReview{Content: "Terrible. Would not buy again.", Rating: 1},
			NormalizedContent: "terrible. would not buy again.",
			DetectedLanguage:  "en",
			WordCount:         5,
		},
	}
}

const patternResponse = `{
	"linguisticSimilarityScore": 72,
	"similarPhrases": [{"phrase": "love it", "reviewIndices": [1], "frequency": 1}],
	"templateIndicators": [{"indicator": "opener", "reviewIndices": [1, 2]}],
	"observations": ["short batch"]
}`

const coordinationResponse = `{
	"timingAnalysis": {"burstsPeriods": [], "distributionScore": 88, "suspiciousTiming": false},
	"clusters": [{"clusterId": 1, "reviewIndices": [1, 2], "commonCharacteristics": ["same day"], "coordinationLikelihood": "low"}],
	"coordinationSignals": ["none of note"]
}`

const integrityResponse = `{
	"manipulationBand": "Low",
	"bandRationale": "Few overlapping signals.",
	"keySignals": [{"signal": "shared opener", "significance": "low", "affectedReviews": [1, 2]}],
	"confidenceExplanation": "Small batch limits confidence.",
	"limitations": ["only two reviews"],
	"overallAssessment": "Patterns are consistent with organic reviewing."
}`

func TestRun_ChainsStagesInOrder(t *testing.T) {
	stub := &stubInvoker{responses: []string{patternResponse, coordinationResponse, integrityResponse}}
	p := New(stub, nil, logging.NewNop())

	findings, err := p.Run(context.Background(), testReviews())
	require.NoError(t, err)
	require.Len(t, stub.prompts, 3)

	// Stage 1 sees the batch with 500-char truncation markers.
	assert.Contains(t, stub.prompts[0], "Analyze the following 2 reviews")
	assert.Contains(t, stub.prompts[0], "Great product, love it!")

	// Stage 2 embeds the pattern summary and the timing data of the one
	// dated review.
	assert.Contains(t, stub.prompts[1], "Linguistic similarity score: 72")
	assert.Contains(t, stub.prompts[1], "Similar phrases found: 1")
	assert.Contains(t, stub.prompts[1], "Template indicators: 1")
	assert.Contains(t, stub.prompts[1], `[{"index":1,"date":"2024-03-01T10:00:00Z","rating":5}]`)

	// Stage 3 gets both prior findings in full, no raw review text.
	assert.Contains(t, stub.prompts[2], `"linguisticSimilarityScore": 72`)
	assert.Contains(t, stub.prompts[2], `"coordinationLikelihood": "low"`)
	assert.NotContains(t, stub.prompts[2], "Great product")

	require.NotNil(t, findings.Pattern.LinguisticSimilarityScore)
	assert.InDelta(t, 72, *findings.Pattern.LinguisticSimilarityScore, 0.001)
	require.Len(t, findings.Coordination.Clusters, 1)
	assert.Equal(t, "Low", findings.Integrity.ManipulationBand)
	assert.False(t, findings.Degraded())
}

func TestRun_DegradedStageDoesNotAbort(t *testing.T) {
	stub := &stubInvoker{responses: []string{
		"I am unable to produce structured output today.",
		coordinationResponse,
		integrityResponse,
	}}
	p := New(stub, nil, logging.NewNop())

	findings, err := p.Run(context.Background(), testReviews())
	require.NoError(t, err)
	require.Len(t, stub.prompts, 3, "later stages still execute")

	assert.Equal(t, reasoning.ParseFailureMessage, findings.Pattern.Error)
	assert.Equal(t, "I am unable to produce structured output today.", findings.Pattern.Raw)
	assert.True(t, findings.Degraded())

	// The degraded stage reads as "no findings" downstream.
	assert.Contains(t, stub.prompts[1], "Linguistic similarity score: N/A")
	assert.Contains(t, stub.prompts[1], "Similar phrases found: 0")
	assert.Contains(t, stub.prompts[2], `"error": "Failed to parse AI response"`)

	assert.Equal(t, "Low", findings.Integrity.ManipulationBand)
}

func TestRun_UpstreamFailureAbortsRemainingStages(t *testing.T) {
	stub := &stubInvoker{
		responses: []string{patternResponse},
		errs:      []error{nil, reasoning.ErrRateLimited},
	}
	p := New(stub, nil, logging.NewNop())

	findings, err := p.Run(context.Background(), testReviews())

	require.Nil(t, findings)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageCoordinationAnalysis, stageErr.Stage)
	assert.ErrorIs(t, err, reasoning.ErrRateLimited)
	assert.Len(t, stub.prompts, 2, "integrity stage never invoked")
}

func TestRun_DegradedFindingsSerializeToPlaceholderOnly(t *testing.T) {
	stub := &stubInvoker{responses: []string{"no braces here", "also nothing", "nor here"}}
	p := New(stub, nil, logging.NewNop())

	findings, err := p.Run(context.Background(), testReviews())
	require.NoError(t, err)

	serialized := serializeFindings(findings.Pattern)
	assert.JSONEq(t, `{"error": "Failed to parse AI response", "raw": "no braces here"}`, serialized)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 600)
	assert.Equal(t, strings.Repeat("a", 500)+"...", truncate(long, 500))
	assert.Equal(t, "short", truncate("short", 500))
}

func TestTruncate_CutsOnRuneBoundary(t *testing.T) {
	// Two-byte runes start at even offsets; an odd limit lands mid-rune
	// and the cut backs up one byte.
	long := strings.Repeat("ü", 300)

	got := truncate(long, 499)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ü", 249)+"...", got)
}

func TestReady_SurfacesInvokerError(t *testing.T) {
	stub := &stubInvoker{readyErr: reasoning.ErrMissingAPIKey}
	p := New(stub, nil, logging.NewNop())

	assert.ErrorIs(t, p.Ready(), reasoning.ErrMissingAPIKey)
	assert.Empty(t, stub.prompts, "readiness never invokes a stage")

	stub.readyErr = nil
	assert.NoError(t, p.Ready())
}

func TestStageError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &StageError{Stage: StagePatternDiscovery, Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), StagePatternDiscovery)
}
