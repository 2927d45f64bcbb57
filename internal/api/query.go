package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/driver"
	"github.com/dbis-ilm/poseidon-go/internal/graph"
	"github.com/dbis-ilm/poseidon-go/internal/telemetry"
)

// maxPlanBodySize bounds the JSON plan body accepted by /api/v1/query.
const maxPlanBodySize = 4 << 20 // 4 MiB

// QueryHandler runs submitted plans (spec §6 "Plan surface") against a
// store through internal/driver, the HTTP analogue of persistor/internal/api's
// CRUD handlers but for the one operation this engine exposes: run a plan.
type QueryHandler struct {
	store         graph.GraphStore
	tm            graph.TransactionManager
	log           *logrus.Logger
	hub           *telemetry.Hub // nil when telemetry is disabled
	defaultChunks int
}

// NewQueryHandler creates a QueryHandler. hub may be nil.
func NewQueryHandler(store graph.GraphStore, tm graph.TransactionManager, log *logrus.Logger, hub *telemetry.Hub, defaultChunks int) *QueryHandler {
	return &QueryHandler{store: store, tm: tm, log: log, hub: hub, defaultChunks: defaultChunks}
}

type profileJSON struct {
	Pipelines []pipelineProfileJSON `json:"pipelines"`
	TotalMS   float64               `json:"total_ms"`
}

type pipelineProfileJSON struct {
	ID       string  `json:"id"`
	Duration float64 `json:"duration_ms"`
}

type queryResponse struct {
	Results map[string][][]cellJSON `json:"results"`
	Profile *profileJSON            `json:"profile,omitempty"`
}

// Run handles POST /api/v1/query: decode an operator-tree plan, execute it
// under a single transaction, and return every collect node's result set.
func (h *QueryHandler) Run(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPlanBodySize+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "reading request body")
		return
	}
	if len(body) > maxPlanBodySize {
		respondError(c, http.StatusRequestEntityTooLarge, ErrCodeInvalidRequest, "plan body too large")
		return
	}

	plan, profile, results, err := BuildPlan(h.store, body)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidPlan, err.Error())
		return
	}
	for i := range plan.Pipelines {
		if plan.Pipelines[i].Chunks <= 0 {
			plan.Pipelines[i].Chunks = h.defaultChunks
		}
	}

	d := driver.New(h.store, h.tm, h.log)
	start := time.Now()
	prof, err := d.Run(c.Request.Context(), plan, profile)
	duration := time.Since(start)

	h.notify(len(plan.Pipelines), duration, err)

	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, queryErrorCode(err), err.Error())
		return
	}

	resp := queryResponse{Results: map[string][][]cellJSON{}}
	for id, rs := range results {
		rows, err := encodeResultSet(rs)
		if err != nil {
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, fmt.Sprintf("encoding results: %v", err))
			return
		}
		resp.Results[strconv.Itoa(id)] = rows
	}
	if prof != nil {
		pj := &profileJSON{TotalMS: float64(prof.Total) / float64(time.Millisecond)}
		for _, p := range prof.Pipelines {
			pj.Pipelines = append(pj.Pipelines, pipelineProfileJSON{ID: p.ID, Duration: float64(p.Duration) / float64(time.Millisecond)})
		}
		resp.Profile = pj
	}
	c.JSON(http.StatusOK, resp)
}

// notify broadcasts a pipeline-execution summary to connected telemetry
// clients (spec's ambient observability stack); a no-op when telemetry is
// disabled or nobody is listening.
func (h *QueryHandler) notify(pipelines int, duration time.Duration, runErr error) {
	if h.hub == nil {
		return
	}
	evt := struct {
		Pipelines  int     `json:"pipelines"`
		DurationMS float64 `json:"duration_ms"`
		Error      string  `json:"error,omitempty"`
	}{Pipelines: pipelines, DurationMS: float64(duration) / float64(time.Millisecond)}
	if runErr != nil {
		evt.Error = runErr.Error()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Warn("marshaling telemetry event")
		return
	}
	h.hub.BroadcastEvent("query_completed", data)
}
