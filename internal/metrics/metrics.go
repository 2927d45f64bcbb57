// Package metrics defines Prometheus metrics for the query execution core,
// extending persistor/internal/metrics's NewHistogramVec/NewGauge pattern
// to pipeline- and operator-level timing instead of HTTP request timing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poseidon_pipeline_duration_seconds",
			Help:    "Pipeline execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pipeline"},
	)

	PipelinesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poseidon_pipelines_total",
			Help: "Total pipelines executed, by outcome",
		},
		[]string{"outcome"},
	)

	OperatorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poseidon_operator_errors_total",
			Help: "Total operator errors, by kind",
		},
		[]string{"kind"},
	)

	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poseidon_query_duration_seconds",
			Help:    "Whole-query duration in seconds, from Driver.Run to commit or abort",
			Buckets: prometheus.DefBuckets,
		},
	)

	ActivePipelines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poseidon_active_pipelines",
			Help: "Pipelines currently executing",
		},
	)

	NodeCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poseidon_nodes_total",
			Help: "Total node-vector slots in the store",
		},
	)

	RelationshipCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poseidon_relationships_total",
			Help: "Total relationship-vector slots in the store",
		},
	)

	TelemetryConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poseidon_telemetry_connections",
			Help: "Active telemetry WebSocket connections",
		},
	)

	APIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poseidon_api_errors_total",
			Help: "Total HTTP API error responses, by error code",
		},
		[]string{"code"},
	)
)

func init() {
	prometheus.MustRegister(
		PipelineDuration, PipelinesTotal, OperatorErrorsTotal,
		QueryDuration, ActivePipelines,
		NodeCount, RelationshipCount, TelemetryConnections,
		APIErrorsTotal,
	)
}
