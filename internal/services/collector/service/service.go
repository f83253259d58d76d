// Package service is the collector: backfill to completion, then stay on
// the live feed until stopped
package service

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"rektwatch/internal/platform/logger"
	"rektwatch/internal/platform/metrics"
	bfdom "rektwatch/internal/services/backfill/domain"
	livedom "rektwatch/internal/services/live/domain"
)

// Relays is the relay pool the collector owns
type Relays interface {
	io.Closer
	Connected() int
}

// Service owns one collector lifecycle. Start is idempotent while running.
type Service struct {
	backfill bfdom.RunnerPort
	live     livedom.SubscriberPort
	relays   Relays
	metrics  *metrics.Metrics
	log      *logger.Logger

	// mu serializes Start and Stop; cancelMu lets Stop abort a Start in flight
	mu       sync.Mutex
	cancelMu sync.Mutex
	cancel   context.CancelFunc

	running      atomic.Bool
	relaysClosed bool
	last         atomic.Pointer[bfdom.Report]
}

// New builds a collector; relays may be nil and are closed by Stop
func New(backfill bfdom.RunnerPort, live livedom.SubscriberPort, m *metrics.Metrics, relays Relays) *Service {
	return &Service{backfill: backfill, live: live, relays: relays, metrics: m, log: logger.Named("collector")}
}

// Start runs the backfill synchronously and then opens the live feed. A
// second Start while running is a no-op. Only a canceled backfill or a
// failed live subscribe is returned.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		s.log.Debug().Msg("collector already running")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()

	s.log.Info().Msg("collector starting; backfill first")
	rep, err := s.backfill.Run(ctx)
	s.last.Store(&rep)
	if err != nil {
		cancel()
		s.log.Warn().Err(err).Msg("backfill interrupted")
		return err
	}

	if err := s.live.Start(ctx); err != nil {
		cancel()
		s.log.Error().Err(err).Msg("live subscription failed")
		return err
	}
	s.running.Store(true)
	s.metrics.CollectorRunning(true)
	s.log.Info().Str("backfill_phase", string(rep.Phase)).Int("backfill_stored", rep.Stored).Msg("collector running")
	return nil
}

// Stop aborts a Start in flight, closes the live feed and then the relays.
// Safe to call more than once.
func (s *Service) Stop(_ context.Context) error {
	s.cancelMu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.cancelMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Swap(false) {
		s.live.Stop()
	}
	var err error
	if s.relays != nil && !s.relaysClosed {
		err = s.relays.Close()
		s.relaysClosed = true
	}
	s.metrics.CollectorRunning(false)
	s.log.Info().Msg("collector stopped")
	return err
}

// Running reports whether Start completed and Stop has not been called
func (s *Service) Running() bool { return s.running.Load() }

// Ready reports whether the live feed is established
func (s *Service) Ready() bool { return s.running.Load() && s.live.Ready() }

// RelaysConnected counts relays with an open connection; zero once stopped
func (s *Service) RelaysConnected() int {
	if s.relays == nil {
		return 0
	}
	return s.relays.Connected()
}

// LiveReceived counts posts delivered by the live feed, duplicates included
func (s *Service) LiveReceived() int64 { return s.live.Received() }

// LastBackfill returns the report of the most recent backfill, if any
func (s *Service) LastBackfill() (bfdom.Report, bool) {
	if r := s.last.Load(); r != nil {
		return *r, true
	}
	return bfdom.Report{}, false
}
