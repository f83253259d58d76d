package http

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rektwatch/internal/core/version"
	phttp "rektwatch/internal/platform/net/http"
	kit "rektwatch/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type guardFunc func(stdctx.Context) error

func (f guardFunc) Guard(ctx stdctx.Context) error { return f(ctx) }

type collector struct {
	ready    bool
	relays   int
	received int64
}

func (c collector) Running() bool        { return true }
func (c collector) Ready() bool          { return c.ready }
func (c collector) RelaysConnected() int { return c.relays }
func (c collector) LiveReceived() int64  { return c.received }

var started = time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC)

func get(t *testing.T, d Deps, path string, out any) {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET %s = %d, want 200", path, rr.Code)
	}
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func deps() Deps {
	return Deps{
		ServiceName: "rektwatch-api",
		StartedAt:   started,
		Backend:     "sqlite",
		Now:         func() time.Time { return started.Add(5 * time.Minute) },
	}
}

func TestHealthAndService(t *testing.T) {
	var h HealthResponse
	get(t, deps(), "/health", &h)
	if !h.OK || h.Service != "rektwatch-api" || h.Now != "2026-10-14T13:05:00Z" {
		t.Fatalf("health = %+v", h)
	}

	var s ServiceResponse
	get(t, deps(), "/service", &s)
	if s.Uptime != 300 || s.Started != "2026-10-14T13:00:00Z" || s.Collector != nil {
		t.Fatalf("service = %+v", s)
	}

	d := deps()
	d.Collector = collector{ready: true, relays: 7, received: 42}
	var withFeed ServiceResponse
	get(t, d, "/service", &withFeed)
	if c := withFeed.Collector; c == nil || !c.Running || c.RelaysConnected != 7 || c.LiveReceived != 42 {
		t.Fatalf("collector = %+v", withFeed.Collector)
	}
}

func TestReadyReportsLiveFeed(t *testing.T) {
	cases := []struct {
		name   string
		feed   collector
		status string
		err    string
	}{
		{"live", collector{ready: true, relays: 3}, "ok", ""},
		{"backfilling", collector{relays: 3}, "fail", "live feed not established"},
		{"all relays down", collector{ready: true}, "fail", "no relay connected"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := deps()
			d.Collector = c.feed
			var r ReadyResponse
			get(t, d, "/ready", &r)
			if r.Status != c.status || len(r.Checks) != 2 || r.Checks[1].Name != "relays" {
				t.Fatalf("ready = %+v", r)
			}
			if r.Checks[1].Error != c.err {
				t.Fatalf("relays error = %q, want %q", r.Checks[1].Error, c.err)
			}
		})
	}
}

func TestReady(t *testing.T) {
	cases := []struct {
		name   string
		store  Guard
		status string
		check  string
	}{
		{"no store", nil, "ok", "skipped"},
		{"healthy", guardFunc(func(stdctx.Context) error { return nil }), "ok", "ok"},
		{"down", guardFunc(func(stdctx.Context) error { return errors.New("sqlite: database is locked") }), "fail", "fail"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := deps()
			d.Store = c.store
			var r ReadyResponse
			get(t, d, "/ready", &r)
			if r.Status != c.status || len(r.Checks) != 1 || r.Checks[0].Status != c.check {
				t.Fatalf("ready = %+v", r)
			}
			if r.Checks[0].Name != "sqlite" {
				t.Fatalf("check name = %q, want sqlite", r.Checks[0].Name)
			}
			if c.check == "fail" {
				kit.MustContain(t, r.Checks[0].Error, "database is locked")
			}
		})
	}
}

func TestVersion(t *testing.T) {
	kit.Swap(t, &version.Version, "v0.3.1")
	var v version.BuildInfo
	get(t, deps(), "/version", &v)
	if v.Service != "rektwatch-api" || v.Version != "v0.3.1" {
		t.Fatalf("version = %+v", v)
	}
}
