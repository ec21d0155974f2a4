// Package analyzer orchestrates one analysis request end to end:
// validation, admission, preprocessing, the reasoning pipeline and the
// final envelope. It owns no transport concerns; the API layer maps its
// error types onto HTTP statuses.
package analyzer

import (
	"context"
	"math"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
	"github.com/BRANOPODCAST/ReviewScope/internal/logging"
	"github.com/BRANOPODCAST/ReviewScope/internal/pipeline"
	"github.com/BRANOPODCAST/ReviewScope/internal/preprocess"
	"github.com/BRANOPODCAST/ReviewScope/internal/ratelimit"
	"github.com/BRANOPODCAST/ReviewScope/internal/telemetry"
	"github.com/BRANOPODCAST/ReviewScope/internal/timeline"
)

// Request is one inbound analysis request, already decoded from the wire.
type Request struct {
	Reviews []domain.RawReview `json:"reviews"`
	BatchID string             `json:"batchId"`
}

// Runner executes the reasoning stages over a preprocessed batch.
type Runner interface {
	// Ready reports whether the reasoning backend can be invoked at all.
	Ready() error
	Run(ctx context.Context, reviews []domain.PreprocessedReview) (*pipeline.Findings, error)
}

// Service wires the analysis components into a single entry point.
type Service struct {
	pipeline  Runner
	limiter   *ratelimit.Limiter
	telemetry *telemetry.Provider
	logger    logging.Logger
}

// NewService creates the orchestrator. telemetry may be nil.
func NewService(runner Runner, limiter *ratelimit.Limiter, tp *telemetry.Provider, logger logging.Logger) *Service {
	return &Service{
		pipeline:  runner,
		limiter:   limiter,
		telemetry: tp,
		logger:    logger,
	}
}

// Analyze runs one batch through admission and execution. clientKey
// identifies the caller for rate limiting.
func (s *Service) Analyze(ctx context.Context, clientKey string, req Request) (*domain.AnalysisResult, error) {
	if err := s.Admit(clientKey, req); err != nil {
		return nil, err
	}
	return s.Run(ctx, req)
}

// Admit validates the request and consumes one unit of the client's
// quota. Validation and the backend readiness check run first so a
// malformed request, or a service with no reasoning credential, never
// spends quota.
func (s *Service) Admit(clientKey string, req Request) error {
	if err := validate(req); err != nil {
		return err
	}

	if err := s.pipeline.Ready(); err != nil {
		s.logger.Error("Reasoning backend not configured", logging.Error(err))
		return err
	}

	decision := s.limiter.Admit(clientKey)
	if !decision.Allowed {
		s.telemetry.RecordRateLimitRejection()
		s.logger.Warn("Analysis rejected by rate limiter",
			logging.String("client_key", clientKey),
			logging.Duration("reset_in", decision.ResetIn),
		)
		return &RateLimitError{RetryAfter: decision.ResetIn}
	}

	s.logger.Info("Analysis admitted",
		logging.String("batch_id", req.BatchID),
		logging.Int("review_count", len(req.Reviews)),
		logging.Int("remaining_quota", decision.Remaining),
	)
	return nil
}

// Run executes an admitted request: preprocessing, concurrent timeline
// aggregation, the reasoning stages and envelope assembly.
func (s *Service) Run(ctx context.Context, req Request) (*domain.AnalysisResult, error) {
	ctx, span := s.telemetry.StartSpan(ctx, "analyzer.analyze")
	defer span.End()

	preprocessed := preprocess.Run(req.Reviews)
	s.telemetry.RecordBatchSize(len(preprocessed))

	// Timeline aggregation needs only preprocessor output, so it runs
	// alongside the reasoning stages.
	timelineCh := make(chan []domain.TimelinePoint, 1)
	go func() {
		timelineCh <- timeline.Aggregate(preprocessed)
	}()

	findings, err := s.pipeline.Run(ctx, preprocessed)
	if err != nil {
		s.telemetry.RecordAnalysis("failed")
		s.logger.Error("Analysis pipeline failed",
			logging.String("batch_id", req.BatchID),
			logging.Error(err),
		)
		return nil, err
	}

	result := assemble(req.BatchID, preprocessed, findings, <-timelineCh)

	outcome := "completed"
	if result.Degraded {
		outcome = "degraded"
	}
	s.telemetry.RecordAnalysis(outcome)
	s.logger.Info("Analysis finished",
		logging.String("batch_id", req.BatchID),
		logging.String("manipulation_band", result.Summary.ManipulationBand),
		logging.Bool("degraded", result.Degraded),
	)
	return result, nil
}

// assemble builds the response envelope. Summary collections are always
// non-nil so clients see empty arrays, never null.
func assemble(batchID string, reviews []domain.PreprocessedReview, findings *pipeline.Findings, points []domain.TimelinePoint) *domain.AnalysisResult {
	band := findings.Integrity.ManipulationBand
	if band == "" {
		band = "Unknown"
	}

	keySignals := findings.Integrity.KeySignals
	if keySignals == nil {
		keySignals = []domain.KeySignal{}
	}
	clusters := findings.Coordination.Clusters
	if clusters == nil {
		clusters = []domain.Cluster{}
	}
	if points == nil {
		points = []domain.TimelinePoint{}
	}

	return &domain.AnalysisResult{
		BatchID:     batchID,
		ReviewCount: len(reviews),
		Degraded:    findings.Degraded(),
		Stages: domain.StageResults{
			Preprocessing:        summarizePreprocessing(reviews),
			PatternDiscovery:     findings.Pattern,
			CoordinationAnalysis: findings.Coordination,
			IntegrityAssessment:  findings.Integrity,
		},
		Summary: domain.Summary{
			ManipulationBand:      band,
			KeySignals:            keySignals,
			ConfidenceExplanation: findings.Integrity.ConfidenceExplanation,
			Clusters:              clusters,
			TimelineData:          points,
		},
	}
}

func summarizePreprocessing(reviews []domain.PreprocessedReview) domain.PreprocessingSummary {
	languages := []string{}
	seen := make(map[string]bool)
	totalWords := 0
	for _, r := range reviews {
		if !seen[r.DetectedLanguage] {
			seen[r.DetectedLanguage] = true
			languages = append(languages, r.DetectedLanguage)
		}
		totalWords += r.WordCount
	}

	average := 0
	if len(reviews) > 0 {
		average = int(math.Round(float64(totalWords) / float64(len(reviews))))
	}

	return domain.PreprocessingSummary{
		ReviewCount:      len(reviews),
		Languages:        languages,
		AverageWordCount: average,
	}
}
