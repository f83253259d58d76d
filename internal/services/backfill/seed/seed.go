// Package seed holds the demo dataset loaded when the publisher has no history
package seed

import (
	"fmt"
	"time"

	"rektwatch/internal/core/classify"
	rekt "rektwatch/internal/services/rekt/domain"
)

type demo struct {
	kind    classify.Kind
	hours   int
	content string
}

var demos = []demo{
	// last 24 hours
	{classify.Long, 2, "Long Rekt: $250K @ 96,432"},
	{classify.Short, 5, "Short Rekt: $180K @ 96,890"},
	{classify.Long, 8, "Long Rekt: $420K @ 95,123"},
	{classify.Short, 12, "Short Rekt: $95K @ 97,234"},
	{classify.Long, 15, "Long Rekt: $320K @ 94,567"},
	{classify.Short, 18, "Short Rekt: $510K @ 98,012"},
	{classify.Long, 21, "Long Rekt: $75K @ 95,890"},

	// last 7 days
	{classify.Long, 30, "Long Rekt: $890K @ 92,456"},
	{classify.Short, 48, "Short Rekt: $1.2M @ 99,123"},
	{classify.Long, 72, "Long Rekt: $450K @ 91,234"},
	{classify.Short, 96, "Short Rekt: $680K @ 100,456"},
	{classify.Long, 120, "Long Rekt: $220K @ 90,123"},
	{classify.Short, 144, "Short Rekt: $340K @ 101,789"},

	// last 30 days
	{classify.Long, 200, "Long Rekt: $1.5M @ 88,456"},
	{classify.Short, 250, "Short Rekt: $920K @ 103,234"},
	{classify.Long, 300, "Long Rekt: $670K @ 87,123"},
	{classify.Short, 350, "Short Rekt: $1.1M @ 105,678"},
	{classify.Long, 400, "Long Rekt: $540K @ 86,234"},
	{classify.Short, 450, "Short Rekt: $780K @ 107,890"},
	{classify.Long, 500, "Long Rekt: $990K @ 85,567"},
	{classify.Short, 550, "Short Rekt: $1.3M @ 109,123"},
}

// Posts returns the demo posts relative to now, newest first. Ids are
// stable (demo-{kind}-{hours}) so reseeding is a no-op.
func Posts(now time.Time) []rekt.RawPost {
	out := make([]rekt.RawPost, len(demos))
	for i, d := range demos {
		out[i] = rekt.RawPost{
			SourceEventID: fmt.Sprintf("demo-%s-%d", d.kind, d.hours),
			Content:       d.content,
			CreatedAt:     now.Add(-time.Duration(d.hours) * time.Hour),
		}
	}
	return out
}
