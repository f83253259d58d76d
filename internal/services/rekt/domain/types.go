// Package domain defines the types and ports of the rekt service
package domain

import (
	"time"

	"rektwatch/internal/core/aggregate"
	"rektwatch/internal/core/classify"
)

// RawPost is a post as it came off a relay, before classification
type RawPost struct {
	SourceEventID string
	Content       string
	CreatedAt     time.Time
}

// Event is a classified liquidation; at most one is stored per SourceEventID
type Event struct {
	ID            string // row id
	SourceEventID string
	Kind          classify.Kind
	Content       string
	Timestamp     time.Time
	USD           float64
}

// Point projects e for the aggregator
func (e Event) Point() aggregate.Point {
	return aggregate.Point{Kind: e.Kind, At: e.Timestamp, USD: e.USD}
}

// Outcome is what Ingest did with a post
type Outcome string

// Outcomes
const (
	OutcomeStored    Outcome = "stored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeFailed    Outcome = "failed"
)

// Ingest paths, used as a metrics label
const (
	PathBackfill = "backfill"
	PathLive     = "live"
)

// Connection states reported by Status
const (
	StatusLive       = "live"
	StatusConnecting = "connecting"
)

// Status is the collector summary served by the status endpoint
type Status struct {
	Status       string `json:"status" example:"live"`
	MessageCount int64  `json:"messageCount" example:"42"`
}
