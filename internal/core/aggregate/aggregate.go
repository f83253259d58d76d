// Package aggregate turns classified liquidations into totals and
// fixed-width, gap-filled time buckets
package aggregate

import (
	"math"
	"strings"
	"time"

	"rektwatch/internal/core/classify"
)

// Range names a dashboard window
type Range string

// Supported ranges
const (
	Range24h Range = "24h"
	Range7d  Range = "7d"
	Range30d Range = "30d"
)

// DefaultRange is used for anything ParseRange does not know
const DefaultRange = Range24h

// Window is a lookback split into buckets of Width
type Window struct {
	Lookback time.Duration
	Width    time.Duration
}

var windows = map[Range]Window{
	Range24h: {Lookback: 24 * time.Hour, Width: time.Hour},
	Range7d:  {Lookback: 7 * 24 * time.Hour, Width: 6 * time.Hour},
	Range30d: {Lookback: 30 * 24 * time.Hour, Width: 24 * time.Hour},
}

// Ranges lists the supported ranges, shortest first
func Ranges() []Range { return []Range{Range24h, Range7d, Range30d} }

// ParseRange maps s to a known Range; unknown input yields DefaultRange and false
func ParseRange(s string) (Range, bool) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := windows[r]; ok {
		return r, true
	}
	return DefaultRange, false
}

// Window returns the lookback and bucket width for r
func (r Range) Window() Window {
	if w, ok := windows[r]; ok {
		return w
	}
	return windows[DefaultRange]
}

// Count is the number of buckets in the window
func (w Window) Count() int {
	return int((w.Lookback + w.Width - 1) / w.Width)
}

// Bounds returns [now-lookback, now)
func (w Window) Bounds(now time.Time) (start, end time.Time) {
	return now.Add(-w.Lookback), now
}

// Point is the slice of a classified event the aggregator needs
type Point struct {
	Kind classify.Kind
	At   time.Time
	USD  float64
}

// Bucket is one window slot; Start is inclusive
type Bucket struct {
	Start time.Time `json:"timestamp"`
	Long  int       `json:"longCount"`
	Short int       `json:"shortCount"`
}

// Summary holds totals over a window
type Summary struct {
	TotalLong     int     `json:"totalLong"`
	TotalShort    int     `json:"totalShort"`
	Ratio         float64 `json:"ratio"`
	TotalLongUSD  float64 `json:"totalLongUSD"`
	TotalShortUSD float64 `json:"totalShortUSD"`
}

// Ratio is long/short rounded to two decimals, 0 when short is 0
func Ratio(long, short int) float64 {
	if short == 0 {
		return 0
	}
	return math.Round(float64(long)/float64(short)*100) / 100
}

// Summarize totals pts; points with an invalid kind are ignored
func Summarize(pts []Point) Summary {
	var s Summary
	for _, p := range pts {
		switch p.Kind {
		case classify.Long:
			s.TotalLong++
			s.TotalLongUSD += p.USD
		case classify.Short:
			s.TotalShort++
			s.TotalShortUSD += p.USD
		}
	}
	s.Ratio = Ratio(s.TotalLong, s.TotalShort)
	return s
}

// Buckets spreads pts over w ending at now. Every slot is present, in
// chronological order. A point lands in floor((at-start)/width); points
// outside [start, now) are skipped.
func Buckets(pts []Point, w Window, now time.Time) []Bucket {
	start, end := w.Bounds(now)
	out := make([]Bucket, w.Count())
	for i := range out {
		out[i].Start = start.Add(time.Duration(i) * w.Width)
	}
	for _, p := range pts {
		if p.At.Before(start) || !p.At.Before(end) {
			continue
		}
		idx := int(p.At.Sub(start) / w.Width)
		if idx >= len(out) {
			continue
		}
		switch p.Kind {
		case classify.Long:
			out[idx].Long++
		case classify.Short:
			out[idx].Short++
		}
	}
	return out
}
