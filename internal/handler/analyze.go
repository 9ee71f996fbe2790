// Package handler contains HTTP handlers for the API.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/logwarden/internal/domain"
	"github.com/logwarden/internal/rules"
	"github.com/logwarden/internal/service"
)

// AnalyzeHandler handles log analysis requests.
type AnalyzeHandler struct {
	analyzer *service.Analyzer
	logger   *zap.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analyzer *service.Analyzer, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		logger:   logger.Named("analyze_handler"),
	}
}

// Handle processes POST /analyze requests. The body carries the raw
// access-log content; the response carries the per-address report.
func (h *AnalyzeHandler) Handle(c *gin.Context) {
	startTime := time.Now()
	logger := h.logger.With(zap.String("request_id", c.GetString("request_id")))

	var req domain.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, domain.AnalysisResponse{
			Success:     false,
			Error:       "Invalid request body: " + err.Error(),
			ProcessedAt: time.Now(),
		})
		return
	}

	response, err := h.analyzer.Analyze(c.Request.Context(), &req)
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, domain.AnalysisResponse{
			Success:     false,
			Error:       "Internal error during analysis",
			ProcessedAt: time.Now(),
		})
		return
	}

	logger.Info("analysis request served",
		zap.Bool("success", response.Success),
		zap.Duration("duration", time.Since(startTime)),
	)

	if response.Success {
		c.JSON(http.StatusOK, response)
	} else {
		c.JSON(http.StatusUnprocessableEntity, response)
	}
}

// RulesHandler reports the loaded rule set.
type RulesHandler struct {
	registry *rules.Registry
	logger   *zap.Logger
}

// NewRulesHandler creates a new RulesHandler.
func NewRulesHandler(registry *rules.Registry, logger *zap.Logger) *RulesHandler {
	return &RulesHandler{
		registry: registry,
		logger:   logger.Named("rules_handler"),
	}
}

// ruleView is the read-only representation of an active rule.
type ruleView struct {
	ID              string   `json:"id"`
	Kind            string   `json:"kind"`
	Severity        string   `json:"severity"`
	Patterns        []string `json:"patterns,omitempty"`
	Threshold       int      `json:"threshold,omitempty"`
	Window          string   `json:"window,omitempty"`
	FailureStatuses []int    `json:"failure_statuses,omitempty"`
}

// Handle processes GET /rules requests.
func (h *RulesHandler) Handle(c *gin.Context) {
	views := make([]ruleView, 0, h.registry.Len())
	for _, r := range h.registry.All() {
		view := ruleView{
			ID:       r.ID,
			Kind:     string(r.Kind),
			Severity: r.Severity.String(),
		}
		for _, p := range r.Patterns {
			view.Patterns = append(view.Patterns, p.Source)
		}
		if r.Kind == domain.KindBruteForce {
			view.Threshold = r.Threshold
			view.Window = r.Window.String()
			view.FailureStatuses = r.FailureStatuses
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"rules": views})
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger.Named("health_handler"),
	}
}

// Handle processes GET /health requests.
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyHandler handles readiness check requests.
type ReadyHandler struct {
	registry *rules.Registry
	logger   *zap.Logger
}

// NewReadyHandler creates a new ReadyHandler.
func NewReadyHandler(registry *rules.Registry, logger *zap.Logger) *ReadyHandler {
	return &ReadyHandler{
		registry: registry,
		logger:   logger.Named("ready_handler"),
	}
}

// Handle processes GET /ready requests. Ready means the rule registry
// loaded with at least one active rule.
func (h *ReadyHandler) Handle(c *gin.Context) {
	if h.registry.Len() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "no rules loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"rules":  h.registry.Len(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
