package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BRANOPODCAST/ReviewScope/internal/analyzer"
	"github.com/BRANOPODCAST/ReviewScope/internal/database"
	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
	"github.com/BRANOPODCAST/ReviewScope/internal/logging"
	"github.com/BRANOPODCAST/ReviewScope/internal/pipeline"
	"github.com/BRANOPODCAST/ReviewScope/internal/ratelimit"
	"github.com/BRANOPODCAST/ReviewScope/internal/reasoning"
)

// BatchStore is the persistence surface the handler drives. Satisfied by
// *database.BatchRepository.
type BatchStore interface {
	Create(ctx context.Context, batchID string, reviewCount int) error
	MarkAnalyzing(ctx context.Context, batchID string) error
	Complete(ctx context.Context, batchID string, result *domain.AnalysisResult) error
	Fail(ctx context.Context, batchID, reason string) error
	Get(ctx context.Context, batchID string) (*database.StoredBatch, error)
}

// Handler handles HTTP requests for the analysis API.
type Handler struct {
	service *analyzer.Service
	batches BatchStore // nil when running stateless
	logger  logging.Logger
}

// NewHandler creates a new API handler. batches may be nil.
func NewHandler(service *analyzer.Service, batches BatchStore, logger logging.Logger) *Handler {
	return &Handler{
		service: service,
		batches: batches,
		logger:  logger,
	}
}

// Analyze handles POST /api/v1/analyze.
//
// The batch row is touched only after validation and admission pass, so
// a rejected request can never reset a previously stored result. Every
// row the handler transitions to analyzing ends the request as either
// completed or failed.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid analysis request body", logging.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	ctx := c.Request.Context()
	clientKey := ratelimit.ClientKey(c.Request.Header)

	if err := h.service.Admit(clientKey, req); err != nil {
		h.writeAnalyzeError(c, err)
		return
	}

	persisted := h.beginBatch(ctx, req)

	result, err := h.service.Run(ctx, req)
	if err != nil {
		if persisted {
			if failErr := h.batches.Fail(ctx, req.BatchID, err.Error()); failErr != nil {
				h.logger.Error("Failed to mark batch failed", logging.Error(failErr))
			}
		}
		h.writeAnalyzeError(c, err)
		return
	}

	if persisted {
		if err := h.batches.Complete(ctx, result.BatchID, result); err != nil {
			h.logger.Error("Failed to persist analysis result",
				logging.String("batch_id", result.BatchID),
				logging.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, result)
}

// beginBatch records the admitted request as pending then analyzing.
// Reports whether the row is now owned by this request.
func (h *Handler) beginBatch(ctx context.Context, req analyzer.Request) bool {
	if h.batches == nil {
		return false
	}
	if err := h.batches.Create(ctx, req.BatchID, len(req.Reviews)); err != nil {
		h.logger.Error("Failed to record analysis batch",
			logging.String("batch_id", req.BatchID),
			logging.Error(err),
		)
		return false
	}
	if err := h.batches.MarkAnalyzing(ctx, req.BatchID); err != nil {
		h.logger.Error("Failed to mark batch analyzing",
			logging.String("batch_id", req.BatchID),
			logging.Error(err),
		)
	}
	return true
}

// writeAnalyzeError maps the orchestrator's error taxonomy onto HTTP
// statuses. Unrecognized errors are opaque 500s; upstream detail never
// leaks to the client.
func (h *Handler) writeAnalyzeError(c *gin.Context, err error) {
	var valErr *analyzer.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: valErr.Message})
		return
	}

	var rateErr *analyzer.RateLimitError
	if errors.As(err, &rateErr) {
		seconds := int(rateErr.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:      "Rate limit exceeded. Please try again later.",
			RetryAfter: seconds,
		})
		return
	}

	var stageErr *pipeline.StageError
	stage := ""
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}

	switch {
	case errors.Is(err, reasoning.ErrMissingAPIKey):
		h.logger.Error("Analysis rejected, no reasoning credential configured")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "AI service not configured",
		})
	case errors.Is(err, reasoning.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "AI service rate limit exceeded. Please try again later.",
		})
	case errors.Is(err, reasoning.ErrQuotaExhausted):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{
			Error: "AI usage quota exhausted. Please add credits to continue.",
		})
	case errors.Is(err, reasoning.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "AI service temporarily unavailable. Please try again.",
		})
	default:
		h.logger.Error("Analysis failed",
			logging.String("stage", stage),
			logging.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "analysis failed"})
	}
}

// GetAnalysis handles GET /api/v1/analyses/:batch_id.
func (h *Handler) GetAnalysis(c *gin.Context) {
	if h.batches == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "batch storage is not configured"})
		return
	}

	batchID := c.Param("batch_id")
	batch, err := h.batches.Get(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, database.ErrBatchNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "analysis batch not found"})
			return
		}
		h.logger.Error("Failed to load analysis batch",
			logging.String("batch_id", batchID),
			logging.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load analysis batch"})
		return
	}

	result, err := batch.AnalysisResult()
	if err != nil {
		h.logger.Error("Stored result is not decodable",
			logging.String("batch_id", batchID),
			logging.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "stored result is corrupt"})
		return
	}

	c.JSON(http.StatusOK, BatchResponse{
		BatchID:     batch.BatchID,
		Status:      batch.Status,
		ReviewCount: batch.ReviewCount,
		Result:      result,
		Error:       batch.ErrorMessage.String,
		CreatedAt:   batch.CreatedAt,
		UpdatedAt:   batch.UpdatedAt,
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
		})
	}
}

// ReadyCheck handles GET /ready. The reasoning upstream is not probed;
// readiness covers only dependencies this process owns.
func (h *Handler) ReadyCheck(db DBPinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := map[string]string{"analyzer": "ok"}
		status := http.StatusOK

		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				services["database"] = "unavailable"
				status = http.StatusServiceUnavailable
			} else {
				services["database"] = "ok"
			}
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not ready"
		}
		c.JSON(status, ReadyResponse{Status: state, Services: services})
	}
}

// DBPinger is the readiness probe surface of the database pool.
type DBPinger interface {
	PingContext(ctx context.Context) error
}
