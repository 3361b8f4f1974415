package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/linkscribe/api-service/internal/domain/service"
)

const healthCheckTimeout = 5 * time.Second

var errNotConfigured = errors.New("not configured")

// ModelReporter describes the classifier serving predictions
type ModelReporter interface {
	ModelInfo() service.ModelInfo
}

// componentCheck probes one dependency. Optional components that are not
// configured report errNotConfigured and never fail the service.
type componentCheck struct {
	name     string
	optional bool
	// notReady is the /ready reason when the probe fails
	notReady string
	probe    func(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	model  ModelReporter
	checks []componentCheck
}

// NewHealthHandler creates a new health handler. db is nil when link history is disabled.
func NewHealthHandler(db *gorm.DB, model ModelReporter) *HealthHandler {
	h := &HealthHandler{model: model}
	h.checks = []componentCheck{
		{name: "model", notReady: "model not loaded", probe: h.probeModel},
		{name: "database", optional: true, notReady: "database unreachable", probe: func(ctx context.Context) error {
			if db == nil {
				return errNotConfigured
			}
			return ping(ctx, db)
		}},
	}
	return h
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string             `json:"status"`
	Components map[string]string  `json:"components"`
	Model      *service.ModelInfo `json:"model,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := HealthStatus{Status: "healthy", Components: make(map[string]string, len(h.checks))}
	for _, check := range h.checks {
		err := check.probe(ctx)
		switch {
		case err == nil:
			status.Components[check.name] = "ok"
		case errors.Is(err, errNotConfigured):
			status.Components[check.name] = err.Error()
			if !check.optional {
				status.Status = "unhealthy"
			}
		default:
			status.Components[check.name] = "error: " + err.Error()
			status.Status = "unhealthy"
		}
	}
	if h.model != nil {
		info := h.model.ModelInfo()
		status.Model = &info
	}

	httpStatus := http.StatusOK
	if status.Status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, status)
}

// Ready handles GET /ready. It reports the first failing component.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	for _, check := range h.checks {
		err := check.probe(ctx)
		if err == nil || (check.optional && errors.Is(err, errNotConfigured)) {
			continue
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": check.notReady})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *HealthHandler) probeModel(context.Context) error {
	if h.model == nil {
		return errNotConfigured
	}
	if info := h.model.ModelInfo(); !info.Ready {
		return errors.New("model " + info.State)
	}
	return nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
