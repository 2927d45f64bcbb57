package telemetry

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// Event is a structured pipeline-execution notification sent to connected
// clients: a pipeline started, finished, or a query committed/aborted.
type Event struct {
	Type string          `json:"type"`
	ID   uint64          `json:"id"`
	Data json.RawMessage `json:"data"`
	Time time.Time       `json:"time"`
}

// SubscribeMsg is sent by the client on connect to request event replay.
type SubscribeMsg struct {
	Type        string `json:"type"`
	LastEventID uint64 `json:"last_event_id"`
}

// ResetMsg tells the client to do a full refresh (requested events too old).
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// PipelineEventData is the payload of a "pipeline_start"/"pipeline_finish"
// event, mirroring driver.PipelineProfile.
type PipelineEventData struct {
	Pipeline    string  `json:"pipeline"`
	DurationSec float64 `json:"duration_seconds,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// EventSequence hands out monotonically increasing event ids for replay
// ordering (spec's telemetry concern has no per-tenant partitioning, so a
// single counter suffices here).
type EventSequence struct {
	counter atomic.Uint64
}

// Next returns the next sequence number.
func (es *EventSequence) Next() uint64 { return es.counter.Add(1) }
