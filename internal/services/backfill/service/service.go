// Package service runs the one-shot historical backfill: recent history,
// then all time, then optionally the demo seed
package service

import (
	"context"
	"errors"
	"time"

	"rektwatch/internal/platform/logger"
	"rektwatch/internal/services/backfill/domain"
	"rektwatch/internal/services/backfill/guardrails"
	"rektwatch/internal/services/backfill/seed"
	rekt "rektwatch/internal/services/rekt/domain"
)

// Config holds the backfill knobs
type Config struct {
	Lookback      time.Duration // recent window; <=0 -> 168h
	Limit         int           // recent query limit; <=0 -> 1000
	FallbackLimit int           // all time query limit; <=0 -> 100
	Seed          bool          // load the demo dataset when both queries are empty
	ProgressEvery int           // log every n posts; <=0 -> 50

	Timeouts guardrails.Timeouts
}

func (c Config) withDefaults() Config {
	if c.Lookback <= 0 {
		c.Lookback = 168 * time.Hour
	}
	if c.Limit <= 0 {
		c.Limit = 1000
	}
	if c.FallbackLimit <= 0 {
		c.FallbackLimit = 100
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = 50
	}
	if c.Timeouts.Query <= 0 {
		c.Timeouts.Query = 30 * time.Second
	}
	return c
}

// Service implements domain.RunnerPort
type Service struct {
	src    domain.Source
	ingest rekt.IngestPort
	cfg    Config
	now    func() time.Time
	log    *logger.Logger
}

var _ domain.RunnerPort = (*Service)(nil)

// New constructs the backfill service
func New(src domain.Source, ingest rekt.IngestPort, cfg Config, now func() time.Time) *Service {
	if src == nil {
		panic("backfill.Service requires a non nil Source")
	}
	if ingest == nil {
		panic("backfill.Service requires a non nil IngestPort")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{src: src, ingest: ingest, cfg: cfg.withDefaults(), now: now, log: logger.Named("backfill")}
}

// Run fetches history and ingests it in fetch order. Transport failures and
// timeouts count as an empty phase; only cancellation of ctx is returned.
func (s *Service) Run(ctx context.Context) (domain.Report, error) {
	start := time.Now()
	rep := domain.Report{Phase: domain.PhaseNone}

	since := s.now().Add(-s.cfg.Lookback)
	posts, err := s.query(ctx, domain.PhaseRecent, domain.HistoryFilter{Since: &since, Limit: s.cfg.Limit})
	if err != nil {
		return s.done(rep, start), err
	}
	rep.Phase = domain.PhaseRecent

	if len(posts) == 0 {
		s.log.Info().Dur("lookback", s.cfg.Lookback).Msg("no recent posts; widening to all time")
		posts, err = s.query(ctx, domain.PhaseAllTime, domain.HistoryFilter{Limit: s.cfg.FallbackLimit})
		if err != nil {
			return s.done(rep, start), err
		}
		rep.Phase = domain.PhaseAllTime
	}

	if len(posts) == 0 {
		rep.Phase = domain.PhaseNone
		if s.cfg.Seed {
			posts = seed.Posts(s.now())
			rep.Phase = domain.PhaseSeed
			s.log.Warn().Int("posts", len(posts)).Msg("no history on relays; loading demo seed")
		}
	}
	rep.Fetched = len(posts)

	for i, p := range posts {
		if ctx.Err() != nil {
			return s.done(rep, start), ctx.Err()
		}
		s.one(ctx, p, &rep)
		if n := i + 1; n%s.cfg.ProgressEvery == 0 || n == len(posts) {
			s.log.Info().
				Int("processed", n).
				Int("total", len(posts)).
				Int("stored", rep.Stored).
				Int("duplicate", rep.Duplicate).
				Msg("backfill progress")
		}
	}
	return s.done(rep, start), nil
}

// query runs one phase. A timeout or relay failure yields no posts; any
// partial result from a timed out query is dropped.
func (s *Service) query(ctx context.Context, phase domain.Phase, f domain.HistoryFilter) ([]rekt.RawPost, error) {
	qctx, cancel := guardrails.ForQuery(ctx, s.cfg.Timeouts)
	defer cancel()

	posts, err := s.src.QueryHistorical(qctx, f)
	switch {
	case err == nil:
		s.log.Info().Str("phase", string(phase)).Int("posts", len(posts)).Msg("history fetched")
		return posts, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Warn().Str("phase", string(phase)).Dur("timeout", s.cfg.Timeouts.Query).Int("partial", len(posts)).
			Msg("history query timed out; treating as empty")
	default:
		s.log.Warn().Err(err).Str("phase", string(phase)).Msg("history query failed; treating as empty")
	}
	return nil, nil
}

func (s *Service) one(ctx context.Context, p rekt.RawPost, rep *domain.Report) {
	ictx, cancel := guardrails.ForIngest(ctx, s.cfg.Timeouts)
	defer cancel()

	out, err := s.ingest.Ingest(ictx, rekt.PathBackfill, p)
	switch out {
	case rekt.OutcomeStored:
		rep.Stored++
	case rekt.OutcomeDuplicate:
		rep.Duplicate++
	case rekt.OutcomeUnmatched:
		rep.Unmatched++
	default:
		rep.Failed++
		s.log.Error().Err(err).Str("id", p.SourceEventID).Msg("backfill post failed; skipping")
	}
}

func (s *Service) done(rep domain.Report, start time.Time) domain.Report {
	rep.Elapsed = time.Since(start)
	s.log.Info().
		Str("phase", string(rep.Phase)).
		Int("fetched", rep.Fetched).
		Int("stored", rep.Stored).
		Int("duplicate", rep.Duplicate).
		Int("unmatched", rep.Unmatched).
		Int("failed", rep.Failed).
		Dur("elapsed", rep.Elapsed).
		Msg("backfill finished")
	return rep
}
