// Package service runs the live subscription and feeds posts to ingest
// through a bounded queue with a single consumer
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	perr "rektwatch/internal/platform/errors"
	"rektwatch/internal/platform/logger"
	"rektwatch/internal/services/live/domain"
	rekt "rektwatch/internal/services/rekt/domain"
)

// Config for the live subscriber
type Config struct {
	Queue         int           // queued posts before delivery blocks; <=0 -> 256
	IngestTimeout time.Duration // per post; <=0 -> 5s

	// OnReady and OnPost are optional lifecycle hooks
	OnReady func()
	OnPost  func(rekt.RawPost)
}

// Service implements domain.SubscriberPort
type Service struct {
	src    domain.Source
	ingest rekt.IngestPort
	cfg    Config
	now    func() time.Time
	log    *logger.Logger

	mu      sync.Mutex
	sub     domain.Subscription
	queue   chan rekt.RawPost
	stop    chan struct{}
	wg      sync.WaitGroup
	started bool

	ready    atomic.Bool
	received atomic.Int64
}

var _ domain.SubscriberPort = (*Service)(nil)

// New constructs the live subscriber
func New(src domain.Source, ingest rekt.IngestPort, cfg Config, now func() time.Time) *Service {
	if cfg.Queue <= 0 {
		cfg.Queue = 256
	}
	if cfg.IngestTimeout <= 0 {
		cfg.IngestTimeout = 5 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Service{src: src, ingest: ingest, cfg: cfg, now: now, log: logger.Named("live")}
}

// Start subscribes from now on and starts the consumer. It returns once the
// subscription is open, not once it is ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return perr.New(perr.ErrorCodeInvalidArgument, "live subscriber already started")
	}

	s.queue = make(chan rekt.RawPost, s.cfg.Queue)
	s.stop = make(chan struct{})
	queue, stop := s.queue, s.stop

	since := s.now()
	sub, err := s.src.Subscribe(ctx, since,
		func(p rekt.RawPost) {
			s.received.Add(1)
			select {
			case queue <- p:
			case <-stop:
			}
		},
		func() {
			s.ready.Store(true)
			s.log.Info().Time("since", since).Msg("live subscription established")
			if s.cfg.OnReady != nil {
				s.cfg.OnReady()
			}
		},
	)
	if err != nil {
		return err
	}
	s.sub = sub
	s.started = true

	s.wg.Add(1)
	go s.consume(context.WithoutCancel(ctx), queue, stop)
	return nil
}

// consume ingests in queue order; after stop it drains what is queued
func (s *Service) consume(ctx context.Context, queue <-chan rekt.RawPost, stop <-chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case p := <-queue:
			s.handle(ctx, p)
		case <-stop:
			for {
				select {
				case p := <-queue:
					s.handle(ctx, p)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) handle(ctx context.Context, p rekt.RawPost) {
	ictx, cancel := context.WithTimeout(ctx, s.cfg.IngestTimeout)
	out, err := s.ingest.Ingest(ictx, rekt.PathLive, p)
	cancel()
	switch out {
	case rekt.OutcomeStored:
		s.log.Info().Str("id", p.SourceEventID).Msg("live post stored")
	case rekt.OutcomeFailed:
		s.log.Error().Err(err).Str("id", p.SourceEventID).Msg("live post failed; skipping")
	}
	if s.cfg.OnPost != nil {
		s.cfg.OnPost(p)
	}
}

// Stop closes the subscription and waits for queued posts to be ingested
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.sub.Close()
	close(s.stop)
	s.wg.Wait()
	s.ready.Store(false)
}

// Ready reports whether the subscription has been established
func (s *Service) Ready() bool { return s.ready.Load() }

// Received counts posts delivered by the source
func (s *Service) Received() int64 { return s.received.Load() }
