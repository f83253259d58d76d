package nostr

import (
	"context"
	"sort"
	"sync"

	perr "rektwatch/internal/platform/errors"
	"rektwatch/internal/platform/logger"
	pstrings "rektwatch/internal/platform/strings"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"golang.org/x/sync/errgroup"
)

// PoolConfig tunes a Pool
type PoolConfig struct {
	Relay RelayConfig
	// Verify drops events whose id or signature does not check out
	Verify bool
	// SeenCap bounds the ids remembered for cross relay dedup in Subscribe
	SeenCap int
	// Parallel caps concurrent relay work in Query
	Parallel int
}

// Pool fans queries and subscriptions out over a set of relays and merges
// the results. Relays are dialled lazily and kept until Close.
type Pool struct {
	urls []string
	cfg  PoolConfig
	log  *logger.Logger

	mu     sync.Mutex
	relays map[string]*Relay
	closed bool
}

// NewPool builds a pool over urls; blanks and repeats are dropped
func NewPool(urls []string, cfg PoolConfig) *Pool {
	if cfg.SeenCap <= 0 {
		cfg.SeenCap = 10_000
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = 16
	}
	return &Pool{
		urls:   pstrings.Compact(urls),
		cfg:    cfg,
		log:    logger.Named("nostr"),
		relays: map[string]*Relay{},
	}
}

// URLs returns the relay urls
func (p *Pool) URLs() []string { return append([]string(nil), p.urls...) }

// Connected counts relays with an open websocket
func (p *Pool) Connected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range p.relays {
		if r.Connected() {
			n++
		}
	}
	return n
}

// relay returns the connected relay for url, dialling it on first use.
// A failed dial is not cached.
func (p *Pool) relay(ctx context.Context, url string) (*Relay, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, perr.Relayf("pool closed")
	}
	r, ok := p.relays[url]
	if !ok {
		r = NewRelay(url, p.cfg.Relay)
		p.relays[url] = r
	}
	p.mu.Unlock()

	if err := r.Connect(ctx); err != nil {
		p.mu.Lock()
		if p.relays[url] == r {
			delete(p.relays, url)
		}
		p.mu.Unlock()
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// relayRetry keeps dialling url with backoff until it connects or ctx ends
func (p *Pool) relayRetry(ctx context.Context, url string) (*Relay, error) {
	rc := p.cfg.Relay.withDefaults()
	policy := retrypolicy.NewBuilder[*Relay]().
		WithBackoff(rc.ReconnectMin, rc.ReconnectMax).
		WithJitterFactor(0.1).
		WithMaxRetries(-1).
		Build()
	return failsafe.With[*Relay](policy).WithContext(ctx).Get(func() (*Relay, error) {
		return p.relay(ctx, url)
	})
}

func (p *Pool) accept(f Filter, e Event, relay string) bool {
	if !f.Matches(e) {
		p.log.Debug().Str("relay", relay).Str("id", short(e.ID)).Msg("event outside filter dropped")
		return false
	}
	if p.cfg.Verify {
		if err := e.Verify(); err != nil {
			p.log.Debug().Err(err).Str("relay", relay).Msg("event failed verification")
			return false
		}
	}
	return true
}

// Query asks every relay and merges the answers, deduped by id and sorted
// by created_at then id. A relay that cannot be reached is skipped; the
// call fails only when all of them fail. A relay that never sends EOSE
// contributes what it sent within RelayConfig.EOSETimeout. When ctx ends
// first the merged partial result comes back with ctx.Err().
func (p *Pool) Query(ctx context.Context, f Filter) ([]Event, error) {
	if len(p.urls) == 0 {
		return nil, perr.Relayf("no relays configured")
	}

	var (
		mu       sync.Mutex
		byID     = map[string]Event{}
		failures int
		firstErr error
	)
	var g errgroup.Group
	g.SetLimit(p.cfg.Parallel)
	for _, url := range p.urls {
		g.Go(func() error {
			evs, err := p.queryOne(ctx, url, f)
			mu.Lock()
			defer mu.Unlock()
			for _, e := range evs {
				if _, dup := byID[e.ID]; !dup {
					byID[e.ID] = e
				}
			}
			if err != nil && ctx.Err() == nil {
				failures++
				if firstErr == nil {
					firstErr = err
				}
				p.log.Warn().Err(err).Str("relay", url).Msg("relay query failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	if failures == len(p.urls) {
		return nil, perr.Wrapf(firstErr, perr.ErrorCodeRelay, "all %d relays failed", failures)
	}

	out := make([]Event, 0, len(byID))
	for _, e := range byID {
		out = append(out, e)
	}
	SortEvents(out)
	if f.Limit > 0 && len(out) > f.Limit {
		// relays return the newest first; keep the newest limit overall
		out = out[len(out)-f.Limit:]
	}
	return out, ctx.Err()
}

func (p *Pool) queryOne(ctx context.Context, url string, f Filter) ([]Event, error) {
	r, err := p.relay(ctx, url)
	if err != nil {
		return nil, err
	}
	evs, err := r.Query(ctx, f)
	kept := evs[:0]
	for _, e := range evs {
		if p.accept(f, e, url) {
			kept = append(kept, e)
		}
	}
	return kept, err
}

// SortEvents orders by created_at ascending, ties by id
func SortEvents(evs []Event) {
	sort.Slice(evs, func(i, j int) bool {
		if evs[i].CreatedAt != evs[j].CreatedAt {
			return evs[i].CreatedAt < evs[j].CreatedAt
		}
		return evs[i].ID < evs[j].ID
	})
}

// Subscription is a live pool subscription
type Subscription struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Close ends the subscription on every relay and waits for delivery to stop
func (s *Subscription) Close() {
	s.cancel()
	s.wg.Wait()
}

type relayEvent struct {
	relay string
	ev    Event
}

// Subscribe opens f on every relay. onEvent is called from a single
// goroutine, once per event id across relays. onReady is called once, on
// the first EOSE from any relay. Relays that are down at start keep being
// retried in the background; Subscribe fails only when none connects.
func (p *Pool) Subscribe(ctx context.Context, f Filter, onEvent func(Event), onReady func()) (*Subscription, error) {
	if len(p.urls) == 0 {
		return nil, perr.Relayf("no relays configured")
	}
	sctx, cancel := context.WithCancel(ctx)
	s := &Subscription{cancel: cancel}

	in := make(chan relayEvent, p.cfg.Relay.withDefaults().SubBuffer)
	var ready sync.Once
	fireReady := func() {
		ready.Do(func() {
			if onReady != nil {
				onReady()
			}
		})
	}

	// first pass: connect in parallel; remember who failed
	var (
		mu     sync.Mutex
		subs   = map[string]*Sub{}
		failed []string
		g      errgroup.Group
	)
	for _, url := range p.urls {
		g.Go(func() error {
			sub, err := p.subscribeOne(sctx, url, f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.log.Warn().Err(err).Str("relay", url).Msg("relay subscribe failed; retrying in background")
				failed = append(failed, url)
				return nil
			}
			subs[url] = sub
			return nil
		})
	}
	_ = g.Wait()

	if len(subs) == 0 {
		cancel()
		return nil, perr.Relayf("no relay accepted the subscription (%d tried)", len(p.urls))
	}

	forward := func(url string, sub *Sub) {
		defer s.wg.Done()
		defer sub.Close()
		eose := sub.EOSE()
		for {
			select {
			case <-sctx.Done():
				return
			case <-sub.Done():
				return
			case <-eose:
				eose = nil
				fireReady()
			case e := <-sub.Events():
				select {
				case in <- relayEvent{relay: url, ev: e}:
				case <-sctx.Done():
					return
				}
			}
		}
	}

	for url, sub := range subs {
		s.wg.Add(1)
		go forward(url, sub)
	}
	for _, url := range failed {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if _, err := p.relayRetry(sctx, url); err != nil {
				return
			}
			sub, err := p.subscribeOne(sctx, url, f)
			if err != nil {
				p.log.Warn().Err(err).Str("relay", url).Msg("late relay subscribe failed")
				return
			}
			p.log.Info().Str("relay", url).Msg("late relay joined subscription")
			s.wg.Add(1)
			go forward(url, sub)
		}()
	}

	// single consumer keeps onEvent serial and in arrival order
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		seen := newSeenSet(p.cfg.SeenCap)
		for {
			select {
			case <-sctx.Done():
				return
			case re := <-in:
				if !p.accept(f, re.ev, re.relay) || !seen.add(re.ev.ID) {
					continue
				}
				if onEvent != nil {
					onEvent(re.ev)
				}
			}
		}
	}()

	return s, nil
}

func (p *Pool) subscribeOne(ctx context.Context, url string, f Filter) (*Sub, error) {
	r, err := p.relay(ctx, url)
	if err != nil {
		return nil, err
	}
	return r.Subscribe(ctx, f)
}

// Close closes every relay
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	relays := p.relays
	p.relays = map[string]*Relay{}
	p.mu.Unlock()

	var g errgroup.Group
	for _, r := range relays {
		g.Go(r.Close)
	}
	return g.Wait()
}

// seenSet remembers the last n ids
type seenSet struct {
	m    map[string]struct{}
	ring []string
	next int
}

func newSeenSet(n int) *seenSet {
	return &seenSet{m: make(map[string]struct{}, n), ring: make([]string, n)}
}

// add reports whether id is new
func (s *seenSet) add(id string) bool {
	if _, ok := s.m[id]; ok {
		return false
	}
	if old := s.ring[s.next]; old != "" {
		delete(s.m, old)
	}
	s.ring[s.next] = id
	s.m[id] = struct{}{}
	s.next = (s.next + 1) % len(s.ring)
	return true
}
