package nostr

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	perr "rektwatch/internal/platform/errors"
	"rektwatch/internal/platform/logger"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/gorilla/websocket"
)

// RelayConfig tunes one relay connection
type RelayConfig struct {
	DialTimeout  time.Duration
	PingInterval time.Duration
	// ReadTimeout is how long the connection may stay silent; pongs extend it
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	// EOSETimeout bounds how long Query waits for a relay to finish its
	// stored events; what arrived by then is the answer
	EOSETimeout time.Duration
	// SubBuffer is the per subscription event buffer
	SubBuffer int

	// OnState hears connect and disconnect transitions
	OnState func(url string, up bool)
	// OnEvent hears every EVENT frame before any dedup
	OnEvent func(url string)
}

// DefaultRelayConfig returns the defaults used when a field is zero
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		DialTimeout:  10 * time.Second,
		PingInterval: 30 * time.Second,
		ReadTimeout:  90 * time.Second,
		WriteTimeout: 10 * time.Second,
		ReconnectMin: time.Second,
		ReconnectMax: 30 * time.Second,
		EOSETimeout:  5 * time.Second,
		SubBuffer:    256,
	}
}

func (c RelayConfig) withDefaults() RelayConfig {
	d := DefaultRelayConfig()
	if c.DialTimeout <= 0 {
		c.DialTimeout = d.DialTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = d.PingInterval
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReconnectMin <= 0 {
		c.ReconnectMin = d.ReconnectMin
	}
	if c.ReconnectMax < c.ReconnectMin {
		c.ReconnectMax = max(d.ReconnectMax, c.ReconnectMin)
	}
	if c.EOSETimeout <= 0 {
		c.EOSETimeout = d.EOSETimeout
	}
	if c.SubBuffer <= 0 {
		c.SubBuffer = d.SubBuffer
	}
	return c
}

// Relay is one websocket connection to a relay. After Connect it reads
// until Close, redialling with backoff and replaying open subscriptions
// whenever the connection drops.
type Relay struct {
	url string
	cfg RelayConfig
	log *logger.Logger

	connMu sync.Mutex // guards conn and serializes writes
	conn   *websocket.Conn

	subsMu sync.Mutex
	subs   map[string]*Sub

	startMu sync.Mutex // serializes Connect
	started bool

	seq    atomic.Uint64
	up     atomic.Bool
	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewRelay builds a relay for url; nothing is dialled until Connect
func NewRelay(url string, cfg RelayConfig) *Relay {
	log := logger.C(logger.WithRelay(context.Background(), url)).With().Str("component", "nostr").Logger()
	return &Relay{
		url:  url,
		cfg:  cfg.withDefaults(),
		log:  &log,
		subs: map[string]*Sub{},
		done: make(chan struct{}),
	}
}

// URL returns the relay url
func (r *Relay) URL() string { return r.url }

// Connected reports whether the websocket is currently open
func (r *Relay) Connected() bool { return r.up.Load() }

// Connect dials once and starts the read and ping loops. Later drops are
// handled internally; only this first dial reports an error.
func (r *Relay) Connect(ctx context.Context) error {
	r.startMu.Lock()
	defer r.startMu.Unlock()
	if r.closed.Load() {
		return perr.Relayf("relay %s closed", r.url)
	}
	if r.started {
		return nil
	}
	conn, err := r.dial(ctx)
	if err != nil {
		return err
	}
	if !r.attach(conn) {
		return perr.Relayf("relay %s closed", r.url)
	}
	r.started = true

	r.wg.Add(2)
	go r.run(conn)
	go r.pingLoop()
	return nil
}

func (r *Relay) dial(ctx context.Context) (*websocket.Conn, error) {
	dctx, cancel := context.WithTimeout(ctx, r.cfg.DialTimeout)
	defer cancel()
	d := websocket.Dialer{HandshakeTimeout: r.cfg.DialTimeout}
	conn, _, err := d.DialContext(dctx, r.url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeRelay, "dial %s", r.url)
	}
	return conn, nil
}

// attach publishes conn for writers; false when Close won the race
func (r *Relay) attach(conn *websocket.Conn) bool {
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(r.cfg.ReadTimeout))
	})
	r.connMu.Lock()
	if r.closed.Load() {
		r.connMu.Unlock()
		_ = conn.Close()
		return false
	}
	r.conn = conn
	r.connMu.Unlock()
	r.setUp(true)
	return true
}

func (r *Relay) setUp(up bool) {
	if r.up.Swap(up) == up {
		return
	}
	if up {
		r.log.Debug().Msg("relay connected")
	} else {
		r.log.Warn().Msg("relay disconnected")
	}
	if r.cfg.OnState != nil {
		r.cfg.OnState(r.url, up)
	}
}

// run owns the read side: read until error, redial, replay, repeat
func (r *Relay) run(conn *websocket.Conn) {
	defer r.wg.Done()
	for {
		err := r.readLoop(conn)
		r.setUp(false)
		if r.closed.Load() {
			return
		}
		r.log.Debug().Err(err).Msg("relay read ended")

		next, ok := r.redial()
		if !ok {
			return
		}
		if !r.attach(next) {
			return
		}
		conn = next
		r.replay()
	}
}

// redial retries with capped exponential backoff until a dial works or Close
func (r *Relay) redial() (*websocket.Conn, bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-r.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	policy := retrypolicy.NewBuilder[*websocket.Conn]().
		WithBackoff(r.cfg.ReconnectMin, r.cfg.ReconnectMax).
		WithJitterFactor(0.1).
		WithMaxRetries(-1).
		Build()

	conn, err := failsafe.With[*websocket.Conn](policy).WithContext(ctx).Get(func() (*websocket.Conn, error) {
		c, err := r.dial(ctx)
		if err != nil && ctx.Err() == nil {
			r.log.Debug().Err(err).Msg("redial failed")
		}
		return c, err
	})
	if err != nil || r.closed.Load() {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, false
	}
	return conn, true
}

// replay re-sends REQ for every open subscription on a fresh connection
func (r *Relay) replay() {
	r.subsMu.Lock()
	subs := make([]*Sub, 0, len(r.subs))
	for _, s := range r.subs {
		subs = append(subs, s)
	}
	r.subsMu.Unlock()

	for _, s := range subs {
		if err := r.sendReq(s); err != nil {
			r.log.Warn().Err(err).Str("sub", s.id).Msg("replay REQ failed")
		}
	}
}

func (r *Relay) readLoop(conn *websocket.Conn) error {
	defer conn.Close()
	for {
		if err := conn.SetReadDeadline(time.Now().Add(r.cfg.ReadTimeout)); err != nil {
			return err
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		m, err := ParseMessage(data)
		if err != nil {
			r.log.Debug().Err(err).Msg("unparseable frame")
			continue
		}
		r.dispatch(m)
	}
}

func (r *Relay) dispatch(m Message) {
	switch m.Label {
	case LabelNotice:
		r.log.Info().Str("notice", m.Text).Msg("relay notice")
		return
	case LabelEvent, LabelEOSE, LabelClosed:
	default:
		return
	}

	r.subsMu.Lock()
	s := r.subs[m.SubID]
	r.subsMu.Unlock()
	if s == nil {
		return
	}

	switch m.Label {
	case LabelEvent:
		if r.cfg.OnEvent != nil {
			r.cfg.OnEvent(r.url)
		}
		select {
		case s.events <- *m.Event:
		case <-s.done:
		case <-r.done:
		}
	case LabelEOSE:
		s.eoseOnce.Do(func() { close(s.eose) })
	case LabelClosed:
		r.log.Warn().Str("sub", s.id).Str("reason", m.Text).Msg("subscription closed by relay")
		r.forget(s.id)
		s.finish(perr.Relayf("relay %s closed subscription: %s", r.url, m.Text))
	}
}

func (r *Relay) pingLoop() {
	defer r.wg.Done()
	t := time.NewTicker(r.cfg.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-t.C:
			r.connMu.Lock()
			conn := r.conn
			r.connMu.Unlock()
			if conn == nil || !r.up.Load() {
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(r.cfg.WriteTimeout)); err != nil {
				r.log.Debug().Err(err).Msg("ping failed")
			}
		}
	}
}

func (r *Relay) write(data []byte) error {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	if r.conn == nil {
		return perr.Relayf("relay %s not connected", r.url)
	}
	_ = r.conn.SetWriteDeadline(time.Now().Add(r.cfg.WriteTimeout))
	if err := r.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeRelay, "write to %s", r.url)
	}
	return nil
}

func (r *Relay) sendReq(s *Sub) error {
	b, err := EncodeReq(s.id, s.filters...)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode REQ")
	}
	return r.write(b)
}

func (r *Relay) forget(id string) {
	r.subsMu.Lock()
	delete(r.subs, id)
	r.subsMu.Unlock()
}

// Subscribe opens a subscription. Events arrive on Sub.Events until Close,
// a CLOSED from the relay, or Relay.Close.
func (r *Relay) Subscribe(_ context.Context, filters ...Filter) (*Sub, error) {
	if r.closed.Load() {
		return nil, perr.Relayf("relay %s closed", r.url)
	}
	s := &Sub{
		id:      "rw" + strconv.FormatUint(r.seq.Add(1), 10),
		relay:   r,
		filters: filters,
		events:  make(chan Event, r.cfg.SubBuffer),
		eose:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	r.subsMu.Lock()
	r.subs[s.id] = s
	r.subsMu.Unlock()

	if err := r.sendReq(s); err != nil {
		r.forget(s.id)
		return nil, err
	}
	return s, nil
}

// Query runs one REQ and collects events until EOSE. A relay that stays
// quiet past EOSETimeout is treated as done and what it sent is returned
// without error. When ctx ends first the events gathered so far are
// returned with the context error.
func (r *Relay) Query(ctx context.Context, f Filter) ([]Event, error) {
	s, err := r.Subscribe(ctx, f)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	eoseWait := time.NewTimer(r.cfg.EOSETimeout)
	defer eoseWait.Stop()

	var out []Event
	drain := func() []Event {
		for {
			select {
			case e := <-s.events:
				out = append(out, e)
			default:
				return out
			}
		}
	}
	for {
		select {
		case e := <-s.events:
			out = append(out, e)
		case <-s.eose:
			return drain(), nil
		case <-eoseWait.C:
			out = drain()
			r.log.Debug().Int("events", len(out)).Dur("wait", r.cfg.EOSETimeout).Msg("no EOSE; returning what arrived")
			return out, nil
		case <-s.done:
			return out, s.Err()
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
}

// Close stops the loops and closes the connection; open subs end
func (r *Relay) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	close(r.done)

	r.connMu.Lock()
	if r.conn != nil {
		_ = r.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = r.conn.Close()
	}
	r.connMu.Unlock()

	r.subsMu.Lock()
	subs := r.subs
	r.subs = map[string]*Sub{}
	r.subsMu.Unlock()
	for _, s := range subs {
		s.finish(nil)
	}

	r.wg.Wait()
	r.setUp(false)
	return nil
}

// Sub is one open REQ on a relay
type Sub struct {
	id      string
	relay   *Relay
	filters []Filter

	events   chan Event
	eose     chan struct{}
	eoseOnce sync.Once

	done     chan struct{}
	doneOnce sync.Once
	errMu    sync.Mutex
	err      error
}

// ID is the subscription id sent to the relay
func (s *Sub) ID() string { return s.id }

// Events delivers events in relay order
func (s *Sub) Events() <-chan Event { return s.events }

// EOSE is closed once the relay has sent all stored events
func (s *Sub) EOSE() <-chan struct{} { return s.eose }

// Done is closed when the subscription ends
func (s *Sub) Done() <-chan struct{} { return s.done }

// Err is the reason the relay gave when it closed the subscription
func (s *Sub) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Sub) finish(err error) {
	s.doneOnce.Do(func() {
		s.errMu.Lock()
		s.err = err
		s.errMu.Unlock()
		close(s.done)
	})
}

// Close sends CLOSE and ends the subscription
func (s *Sub) Close() {
	select {
	case <-s.done:
		return
	default:
	}
	s.relay.forget(s.id)
	if b, err := EncodeClose(s.id); err == nil && !s.relay.closed.Load() {
		_ = s.relay.write(b)
	}
	s.finish(nil)
}
