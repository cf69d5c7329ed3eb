// Package health exposes liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"ai-chef-server/internal/infrastructure/config"
	"ai-chef-server/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is anything with a reachable backend to probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the health-check payload.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// Handler serves the probe endpoints.
type Handler struct {
	cfg   *config.Config
	db    Pinger
	cache Pinger
}

// NewHandler creates a probe handler. db and cache may be nil when the
// corresponding backend is not configured.
func NewHandler(cfg *config.Config, db, cache Pinger) *Handler {
	return &Handler{cfg: cfg, db: db, cache: cache}
}

// HealthCheck reports process health with runtime stats.
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogInfo("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck probes the database and cache backends.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			common.LogWarn("database not ready", zap.Error(err))
			checks["database"] = "unavailable"
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			common.LogWarn("cache not ready", zap.Error(err))
			checks["cache"] = "unavailable"
			ready = false
		} else {
			checks["cache"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}

// LivenessCheck reports that the process is alive.
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
