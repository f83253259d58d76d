// Package service classifies incoming posts into the event store and
// answers aggregate queries over it
package service

import (
	"context"
	"time"

	"rektwatch/internal/core/aggregate"
	"rektwatch/internal/core/classify"
	perr "rektwatch/internal/platform/errors"
	"rektwatch/internal/platform/logger"
	"rektwatch/internal/platform/metrics"
	dom "rektwatch/internal/services/rekt/domain"
)

// ErrStorageQuery is the client facing message for any failed read
const ErrStorageQuery = "storage query failed"

// Service implements domain.IngestPort and domain.QueryPort over a Store
type Service struct {
	store   dom.Store
	metrics *metrics.Metrics
	now     func() time.Time
	log     *logger.Logger
}

var (
	_ dom.IngestPort = (*Service)(nil)
	_ dom.QueryPort  = (*Service)(nil)
)

// New builds a service; nil metrics records nothing, nil now is the UTC wall clock
func New(store dom.Store, m *metrics.Metrics, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{store: store, metrics: m, now: now, log: logger.Named("rekt")}
}

// Ingest classifies p and stores it once. A miss or a duplicate is not an
// error; a storage failure is returned with OutcomeFailed.
func (s *Service) Ingest(ctx context.Context, path string, p dom.RawPost) (dom.Outcome, error) {
	out, err := s.ingest(ctx, p)
	s.metrics.Post(path, string(out))
	return out, err
}

func (s *Service) ingest(ctx context.Context, p dom.RawPost) (dom.Outcome, error) {
	if seen, err := s.store.Exists(ctx, p.SourceEventID); err != nil {
		return dom.OutcomeFailed, err
	} else if seen {
		return dom.OutcomeDuplicate, nil
	}

	content := classify.Sanitize(p.Content)
	kind := classify.Classify(content)
	if !kind.Valid() {
		s.log.Debug().Str("id", p.SourceEventID).Msg("post is not a liquidation")
		return dom.OutcomeUnmatched, nil
	}
	usd, _ := classify.ParseUSD(content)

	ok, err := s.store.InsertIfAbsent(ctx, dom.Event{
		SourceEventID: p.SourceEventID,
		Kind:          kind,
		Content:       content,
		Timestamp:     p.CreatedAt,
		USD:           usd,
	})
	switch {
	case err != nil:
		return dom.OutcomeFailed, err
	case !ok:
		return dom.OutcomeDuplicate, nil
	}
	s.log.Debug().Str("id", p.SourceEventID).Str("kind", kind.String()).Float64("usd", usd).Msg("event stored")
	return dom.OutcomeStored, nil
}

func (s *Service) window(ctx context.Context, r aggregate.Range) ([]aggregate.Point, aggregate.Window, time.Time, error) {
	w := r.Window()
	// bucket timestamps inherit this location
	now := s.now().UTC()
	start, end := w.Bounds(now)
	evs, err := s.store.InRange(ctx, start, end)
	if err != nil {
		logger.C(ctx).Error().Err(err).Str("range", string(r)).Msg("event range query failed")
		return nil, w, now, perr.Wrap(err, perr.ErrorCodeDB, ErrStorageQuery)
	}
	pts := make([]aggregate.Point, len(evs))
	for i, e := range evs {
		pts[i] = e.Point()
	}
	return pts, w, now, nil
}

// Stats implements domain.QueryPort
func (s *Service) Stats(ctx context.Context, r aggregate.Range) (aggregate.Summary, error) {
	pts, _, _, err := s.window(ctx, r)
	if err != nil {
		return aggregate.Summary{}, err
	}
	return aggregate.Summarize(pts), nil
}

// Timeseries implements domain.QueryPort
func (s *Service) Timeseries(ctx context.Context, r aggregate.Range) ([]aggregate.Bucket, error) {
	pts, w, now, err := s.window(ctx, r)
	if err != nil {
		return nil, err
	}
	return aggregate.Buckets(pts, w, now), nil
}

// Status implements domain.QueryPort; live once anything has been stored
func (s *Service) Status(ctx context.Context) (dom.Status, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("event count failed")
		return dom.Status{}, perr.Wrap(err, perr.ErrorCodeDB, ErrStorageQuery)
	}
	st := dom.Status{Status: dom.StatusConnecting, MessageCount: n}
	if n > 0 {
		st.Status = dom.StatusLive
	}
	return st, nil
}
