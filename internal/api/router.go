// Package api exposes the query execution core over HTTP (spec §6 "Plan
// surface"), grounded on persistor/internal/api's Gin router/middleware
// stack trimmed to the one real operation this engine serves: submit a
// pre-built operator-tree plan, run it, and get back the result set plus
// optional profiling. It is explicitly not a query language front end —
// the plan body is JSON, never a string to parse (spec §1 Non-goals
// excludes "SQL/Cypher surface syntax").
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/dbpool"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/telemetry"
)

// RouterDeps holds the dependencies the router wires into its handlers.
type RouterDeps struct {
	Log           *logrus.Logger
	Store         graph.GraphStore
	TM            graph.TransactionManager
	Pool          *dbpool.Pool // nil when running against in-memory gstore only
	Hub           *telemetry.Hub
	CORSOrigins   []string
	DefaultChunks int
	Version       string
}

// NewRouter builds the Gin engine: middleware, health/readiness, the query
// endpoint, the telemetry WebSocket, and a Prometheus /metrics endpoint.
func NewRouter(deps *RouterDeps) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.

	r.Use(requestID())
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		MaxAge:           time.Hour,
		AllowCredentials: false,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	health := NewHealthHandler(deps.Store, deps.Pool, deps.Version)
	query := NewQueryHandler(deps.Store, deps.TM, deps.Log, deps.Hub, deps.DefaultChunks)

	v1 := r.Group("/api/v1")
	v1.GET("/health", health.Liveness)
	v1.GET("/ready", health.Readiness)
	v1.POST("/query", query.Run)
	if deps.Hub != nil {
		v1.GET("/ws", wsHandler(deps.Log, deps.Hub, deps.CORSOrigins))
	}

	return r
}
