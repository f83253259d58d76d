package domain

import (
	"context"

	rekt "rektwatch/internal/services/rekt/domain"
)

// Source answers historical queries for the publisher's posts
type Source interface {
	QueryHistorical(ctx context.Context, f HistoryFilter) ([]rekt.RawPost, error)
}

// RunnerPort runs one backfill to completion
type RunnerPort interface {
	Run(ctx context.Context) (Report, error)
}
