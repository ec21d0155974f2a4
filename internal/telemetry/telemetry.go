// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the reviewscope service.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "reviewscope"

// Metrics holds all reviewscope Prometheus metrics.
type Metrics struct {
	AnalysesTotal       *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	StageDegraded       *prometheus.CounterVec
	RateLimitRejections prometheus.Counter
	BatchSize           prometheus.Histogram
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics. Call once per
// process: metrics register on the default registry.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewscope_analyses_total",
			Help: "Total analysis requests by outcome (completed, degraded, failed, rejected)",
		}, []string{"outcome"}),

		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reviewscope_stage_duration_seconds",
			Help:    "Wall time per reasoning stage",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"stage"}),

		StageDegraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewscope_stage_degraded_total",
			Help: "Stage responses that could not be parsed as JSON",
		}, []string{"stage"}),

		RateLimitRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reviewscope_rate_limit_rejections_total",
			Help: "Requests rejected by the admission limiter",
		}),

		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "reviewscope_batch_size",
			Help:    "Number of reviews per analyzed batch",
			Buckets: []float64{1, 5, 10, 20, 30, 40, 50},
		}),
	}
}

// RecordStage records the duration of one reasoning stage. Nil-safe so the
// core stays usable without telemetry wired.
func (p *Provider) RecordStage(stage string, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordStageDegraded counts a stage that fell back to the parse-failure
// placeholder.
func (p *Provider) RecordStageDegraded(stage string) {
	if p == nil {
		return
	}
	p.Metrics.StageDegraded.WithLabelValues(stage).Inc()
}

// RecordAnalysis counts one finished analysis by outcome.
func (p *Provider) RecordAnalysis(outcome string) {
	if p == nil {
		return
	}
	p.Metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
}

// RecordRateLimitRejection counts an admission rejection.
func (p *Provider) RecordRateLimitRejection() {
	if p == nil {
		return
	}
	p.Metrics.RateLimitRejections.Inc()
}

// RecordBatchSize records the size of an admitted batch.
func (p *Provider) RecordBatchSize(size int) {
	if p == nil {
		return
	}
	p.Metrics.BatchSize.Observe(float64(size))
}

// StartSpan starts a new trace span. The caller is responsible for ending
// the span. Nil providers return the context unchanged with a no-op span.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if p == nil {
		return trace.ContextWithSpan(ctx, trace.SpanFromContext(ctx)), trace.SpanFromContext(ctx)
	}
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
