package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dbis-ilm/poseidon-go/internal/dbpool"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
)

// HealthHandler serves health and readiness endpoints, adapted from
// persistor/internal/api/health.go with the embedding/Ollama checks
// dropped (no such dependency exists in this engine).
type HealthHandler struct {
	store     graph.GraphStore
	pool      *dbpool.Pool // nil when running against in-memory gstore only
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. pool may be nil.
func NewHealthHandler(store graph.GraphStore, pool *dbpool.Pool, version string) *HealthHandler {
	return &HealthHandler{store: store, pool: pool, version: version, startTime: time.Now()}
}

type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Backend       string  `json:"backend"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Liveness handles GET /api/v1/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	backend := "gstore"
	if h.pool != nil {
		backend = "pgstore"
	}
	c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       h.version,
		Backend:       backend,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// Readiness handles GET /api/v1/ready, pinging the connection pool when a
// pgstore backend is configured.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"store": "ok"}
	status := "ready"
	statusCode := http.StatusOK

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.pool.Ping(ctx); err != nil {
			checks["store"] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, readinessResponse{Status: status, Checks: checks})
}
