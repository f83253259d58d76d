package domain

import (
	"context"
	"time"

	"rektwatch/internal/core/aggregate"
)

// Store is the dedup ledger and event store in one. Reads are ordered by
// Timestamp then SourceEventID.
type Store interface {
	Exists(ctx context.Context, sourceID string) (bool, error)
	// InsertIfAbsent stores e unless its SourceEventID is already present;
	// a duplicate reports false with no error and leaves the first row alone
	InsertIfAbsent(ctx context.Context, e Event) (bool, error)
	// InRange returns events with start <= Timestamp < end
	InRange(ctx context.Context, start, end time.Time) ([]Event, error)
	All(ctx context.Context) ([]Event, error)
	Count(ctx context.Context) (int64, error)
}

// IngestPort classifies and stores posts
type IngestPort interface {
	Ingest(ctx context.Context, path string, p RawPost) (Outcome, error)
}

// QueryPort serves aggregates over stored events
type QueryPort interface {
	Stats(ctx context.Context, r aggregate.Range) (aggregate.Summary, error)
	Timeseries(ctx context.Context, r aggregate.Range) ([]aggregate.Bucket, error)
	Status(ctx context.Context) (Status, error)
}
