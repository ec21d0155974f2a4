// Package pipeline drives the three ordered reasoning stages: pattern
// discovery, coordination analysis, integrity assessment. Each stage is a
// (build prompt, invoke, parse) step whose prompt embeds the prior stages'
// findings, so the pass is strictly sequential with no retries and no
// loop-back. A stage whose response cannot be parsed degrades to a
// placeholder and is still forwarded as context.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
	"github.com/BRANOPODCAST/ReviewScope/internal/logging"
	"github.com/BRANOPODCAST/ReviewScope/internal/reasoning"
	"github.com/BRANOPODCAST/ReviewScope/internal/telemetry"
)

// Stage names, used in errors, logs and metrics.
const (
	StagePatternDiscovery     = "pattern_discovery"
	StageCoordinationAnalysis = "coordination_analysis"
	StageIntegrityAssessment  = "integrity_assessment"
)

// StageError is a terminal upstream failure carrying the identity of the
// stage that hit it. Remaining stages are never invoked.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Findings bundles every stage's output for one run.
type Findings struct {
	Pattern      domain.PatternFindings
	Coordination domain.CoordinationFindings
	Integrity    domain.IntegrityFindings
}

// Degraded reports whether any stage fell back to a parse-failure
// placeholder.
func (f *Findings) Degraded() bool {
	return f.Pattern.ParseFailure.Degraded() ||
		f.Coordination.ParseFailure.Degraded() ||
		f.Integrity.ParseFailure.Degraded()
}

// Pipeline runs the ordered stages against a reasoning invoker.
type Pipeline struct {
	invoker   reasoning.Invoker
	telemetry *telemetry.Provider
	logger    logging.Logger
}

// New creates a Pipeline. telemetry may be nil.
func New(invoker reasoning.Invoker, tp *telemetry.Provider, logger logging.Logger) *Pipeline {
	return &Pipeline{invoker: invoker, telemetry: tp, logger: logger}
}

// Ready reports whether the reasoning backend is configured. Checked
// before any quota is spent or stage invoked.
func (p *Pipeline) Ready() error {
	return p.invoker.Ready()
}

// Run executes the three stages in order over a preprocessed batch. The
// returned error, if any, is a *StageError wrapping the first upstream
// failure; parse failures degrade instead of erroring.
func (p *Pipeline) Run(ctx context.Context, reviews []domain.PreprocessedReview) (*Findings, error) {
	findings := &Findings{}

	resp, err := p.invokeStage(ctx, StagePatternDiscovery, buildPatternPrompt(reviews))
	if err != nil {
		return nil, err
	}
	findings.Pattern = parseStage[domain.PatternFindings](p, StagePatternDiscovery, resp)

	resp, err = p.invokeStage(ctx, StageCoordinationAnalysis, buildCoordinationPrompt(reviews, findings.Pattern))
	if err != nil {
		return nil, err
	}
	findings.Coordination = parseStage[domain.CoordinationFindings](p, StageCoordinationAnalysis, resp)

	resp, err = p.invokeStage(ctx, StageIntegrityAssessment, buildIntegrityPrompt(len(reviews), findings.Pattern, findings.Coordination))
	if err != nil {
		return nil, err
	}
	findings.Integrity = parseStage[domain.IntegrityFindings](p, StageIntegrityAssessment, resp)

	return findings, nil
}

func (p *Pipeline) invokeStage(ctx context.Context, stage, prompt string) (string, error) {
	ctx, span := p.telemetry.StartSpan(ctx, "pipeline."+stage,
		attribute.Int("prompt_chars", len(prompt)))
	defer span.End()

	p.logger.Debug("Invoking reasoning stage",
		logging.String("stage", stage),
		logging.Int("prompt_chars", len(prompt)),
	)

	start := time.Now()
	resp, err := p.invoker.Invoke(ctx, prompt)
	p.telemetry.RecordStage(stage, time.Since(start))
	if err != nil {
		p.logger.Error("Reasoning stage failed",
			logging.String("stage", stage),
			logging.Error(err),
		)
		return "", &StageError{Stage: stage, Err: err}
	}
	return resp, nil
}

// degradable lets the generic parser stamp the {error, raw} placeholder
// onto any findings type.
type degradable interface {
	SetParseFailure(failure domain.ParseFailure)
}

// parseStage coerces a free-text response into T. Extraction failure
// degrades; a partially-coercible object is kept best-effort.
func parseStage[T any, PT interface {
	*T
	degradable
}](p *Pipeline, stage, resp string) T {
	var out T

	raw, ok := reasoning.ExtractObject(resp)
	if !ok {
		p.logger.Warn("Stage response not parseable, degrading",
			logging.String("stage", stage),
			logging.Int("response_chars", len(resp)),
		)
		p.telemetry.RecordStageDegraded(stage)
		PT(&out).SetParseFailure(domain.ParseFailure{
			Error: reasoning.ParseFailureMessage,
			Raw:   reasoning.Excerpt(resp),
		})
		return out
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		// The object parsed as JSON but some fields did not fit the
		// schema; keep whatever coerced cleanly.
		p.logger.Warn("Stage findings partially coerced",
			logging.String("stage", stage),
			logging.Error(err),
		)
	}
	return out
}

// serializeFindings renders a stage's findings for use as prompt context.
func serializeFindings(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
