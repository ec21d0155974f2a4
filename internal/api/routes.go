package api

import (
	"github.com/gin-gonic/gin"

	"github.com/BRANOPODCAST/ReviewScope/internal/telemetry"
)

// RouterConfig carries the identity and dependencies the routes need.
type RouterConfig struct {
	ServiceName string
	Version     string
	DB          DBPinger // nil when running stateless
	Telemetry   *telemetry.Provider
}

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, cfg RouterConfig) {
	// Health, readiness and metrics
	router.GET("/health", handler.HealthCheck(cfg.ServiceName, cfg.Version))
	router.GET("/ready", handler.ReadyCheck(cfg.DB))
	if cfg.Telemetry != nil {
		router.GET("/metrics", gin.WrapH(cfg.Telemetry.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", handler.Analyze)               // POST /api/v1/analyze
		v1.GET("/analyses/:batch_id", handler.GetAnalysis) // GET /api/v1/analyses/:batch_id
	}
}
