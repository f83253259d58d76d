// Package domain holds the query and response shapes of the read endpoints
package domain

import "rektwatch/internal/core/aggregate"

// RangeQuery is the ?range= selector shared by /stats and /timeseries.
// Values outside the enum fall back to 24h instead of failing.
type RangeQuery struct {
	Range string `query:"range" validate:"omitempty,oneof=24h 7d 30d" example:"24h"`
}

// StatsResponse documents GET /stats
// swagger:model
type StatsResponse struct {
	TotalLong     int     `json:"totalLong"     example:"12"`
	TotalShort    int     `json:"totalShort"    example:"8"`
	Ratio         float64 `json:"ratio"         example:"1.5"`
	TotalLongUSD  float64 `json:"totalLongUSD"  example:"4250000"`
	TotalShortUSD float64 `json:"totalShortUSD" example:"1980000"`
}

// BucketResponse documents one GET /timeseries entry
// swagger:model
type BucketResponse struct {
	Timestamp  string `json:"timestamp"  example:"2026-10-14T11:00:00Z"`
	LongCount  int    `json:"longCount"  example:"3"`
	ShortCount int    `json:"shortCount" example:"1"`
}

// Summary is what /stats returns on the wire
type Summary = aggregate.Summary

// Bucket is what /timeseries returns on the wire
type Bucket = aggregate.Bucket
