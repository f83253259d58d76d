// Package guardrails holds the time budgets of a backfill run
package guardrails

import (
	"context"
	"time"
)

// Timeouts are per-step budgets. Zero values mean no extra timeout at that level
type Timeouts struct {
	// Query caps one historical relay query
	Query time.Duration

	// Ingest caps storing a single post
	Ingest time.Duration
}

// ForQuery returns a sub context for one query bounded by Query and any remaining parent budget
func ForQuery(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Query)
}

// ForIngest returns a sub context for one insert bounded by Ingest and any remaining parent budget
func ForIngest(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Ingest)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout takes the tighter of d and the parent remainder and
// never extends the parent deadline. A zero d gives a cancelable child.
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
