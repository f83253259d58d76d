// Package domain holds the ports and result types of the backfill run
package domain

import "time"

// Phase names which query produced the posts of a run
type Phase string

// Phases in the order they are tried
const (
	PhaseRecent  Phase = "recent"
	PhaseAllTime Phase = "alltime"
	PhaseSeed    Phase = "seed"
	PhaseNone    Phase = "none"
)

// HistoryFilter bounds a historical query; a nil Since means all time
type HistoryFilter struct {
	Since *time.Time
	Limit int
}

// Report summarises one backfill run
type Report struct {
	Phase     Phase         `json:"phase"`
	Fetched   int           `json:"fetched"`
	Stored    int           `json:"stored"`
	Duplicate int           `json:"duplicate"`
	Unmatched int           `json:"unmatched"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed"`
}
