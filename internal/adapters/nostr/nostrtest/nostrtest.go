// Package nostrtest runs an in-process NIP-01 relay and signs notes for tests
package nostrtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rektwatch/internal/adapters/nostr"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/gorilla/websocket"
)

// Relay is a fake relay. Stored events answer REQs; Publish pushes to
// open subscriptions whose filters match.
type Relay struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu      sync.Mutex
	stored  []nostr.Event
	clients map[*client]struct{}

	// NoEOSE makes REQs hang after the stored events
	NoEOSE atomic.Bool
	// Reject answers every REQ with CLOSED and this reason when set
	Reject atomic.Pointer[string]

	reqs atomic.Int64
}

type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
	smu  sync.Mutex
	subs map[string][]nostr.Filter
}

func (c *client) send(b []byte) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.WriteMessage(websocket.TextMessage, b)
}

// NewRelay starts a relay that is closed when the test ends
func NewRelay(t testing.TB) *Relay {
	t.Helper()
	r := &Relay{clients: map[*client]struct{}{}}
	r.srv = httptest.NewServer(http.HandlerFunc(r.serve))
	t.Cleanup(r.Close)
	return r
}

// URL is the ws:// address
func (r *Relay) URL() string { return "ws" + strings.TrimPrefix(r.srv.URL, "http") }

// Requests counts REQ frames received
func (r *Relay) Requests() int { return int(r.reqs.Load()) }

// Store adds events without notifying subscribers
func (r *Relay) Store(evs ...nostr.Event) {
	r.mu.Lock()
	r.stored = append(r.stored, evs...)
	r.mu.Unlock()
}

// Publish stores e and sends it to every matching open subscription
func (r *Relay) Publish(e nostr.Event) {
	r.mu.Lock()
	r.stored = append(r.stored, e)
	clients := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		c.smu.Lock()
		var hits []string
		for id, fs := range c.subs {
			if matchesAny(fs, e) {
				hits = append(hits, id)
			}
		}
		c.smu.Unlock()
		for _, id := range hits {
			if b, err := nostr.EncodeEvent(id, e); err == nil {
				c.send(b)
			}
		}
	}
}

// Subscriptions counts open subscriptions across connections
func (r *Relay) Subscriptions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for c := range r.clients {
		c.smu.Lock()
		n += len(c.subs)
		c.smu.Unlock()
	}
	return n
}

// DropConnections closes every client socket; clients should reconnect
func (r *Relay) DropConnections() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		_ = c.conn.Close()
	}
}

// Close stops the server
func (r *Relay) Close() {
	r.DropConnections()
	r.srv.Close()
}

func (r *Relay) serve(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, subs: map[string][]nostr.Filter{}}
	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.clients, c)
		r.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var arr []json.RawMessage
		if json.Unmarshal(data, &arr) != nil || len(arr) < 2 {
			continue
		}
		var label, id string
		_ = json.Unmarshal(arr[0], &label)
		_ = json.Unmarshal(arr[1], &id)

		switch label {
		case nostr.LabelReq:
			r.reqs.Add(1)
			var fs []nostr.Filter
			for _, raw := range arr[2:] {
				var f nostr.Filter
				if json.Unmarshal(raw, &f) == nil {
					fs = append(fs, f)
				}
			}
			r.answer(c, id, fs)
		case nostr.LabelClose:
			c.smu.Lock()
			delete(c.subs, id)
			c.smu.Unlock()
		}
	}
}

func (r *Relay) answer(c *client, id string, fs []nostr.Filter) {
	if reason := r.Reject.Load(); reason != nil {
		b, _ := json.Marshal([]string{nostr.LabelClosed, id, *reason})
		c.send(b)
		return
	}
	c.smu.Lock()
	c.subs[id] = fs
	c.smu.Unlock()

	r.mu.Lock()
	stored := append([]nostr.Event(nil), r.stored...)
	r.mu.Unlock()

	// newest first, as relays do, honoring each filter's limit
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].CreatedAt > stored[j].CreatedAt })
	sent := map[string]bool{}
	for _, f := range fs {
		n := 0
		for _, e := range stored {
			if f.Limit > 0 && n >= f.Limit {
				break
			}
			if !f.Matches(e) || sent[e.ID] {
				continue
			}
			sent[e.ID] = true
			n++
			if b, err := nostr.EncodeEvent(id, e); err == nil {
				c.send(b)
			}
		}
	}
	if !r.NoEOSE.Load() {
		b, _ := nostr.EncodeEOSE(id)
		c.send(b)
	}
}

func matchesAny(fs []nostr.Filter, e nostr.Event) bool {
	for _, f := range fs {
		if f.Matches(e) {
			return true
		}
	}
	return false
}

// Signer signs notes with a throwaway key
type Signer struct {
	sk     *btcec.PrivateKey
	PubKey string
	NPub   string
}

// NewSigner makes a fresh key
func NewSigner(t testing.TB) *Signer {
	t.Helper()
	sk, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	tmpl := nostr.Event{Kind: nostr.KindTextNote}
	if err := tmpl.Sign(sk); err != nil {
		t.Fatalf("sign: %v", err)
	}
	npub, err := nostr.EncodeNPub(tmpl.PubKey)
	if err != nil {
		t.Fatalf("npub: %v", err)
	}
	return &Signer{sk: sk, PubKey: tmpl.PubKey, NPub: npub}
}

// Note returns a signed kind 1 event
func (s *Signer) Note(t testing.TB, content string, at time.Time) nostr.Event {
	t.Helper()
	e := nostr.Event{CreatedAt: at.Unix(), Kind: nostr.KindTextNote, Content: content}
	if err := e.Sign(s.sk); err != nil {
		t.Fatalf("sign: %v", err)
	}
	return e
}
