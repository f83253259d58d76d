// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"rektwatch/internal/core/version"
	"rektwatch/internal/modkit/httpkit"
	phttp "rektwatch/internal/platform/net/http"
)

// Guard is satisfied by the opened store
type Guard interface {
	Guard(stdctx.Context) error
}

// Collector is an in-process collector, when the binary runs one
type Collector interface {
	Running() bool
	Ready() bool
	RelaysConnected() int
	LiveReceived() int64
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Backend     string
	Store       Guard
	Collector   Collector // nil when nothing is collected here
	Now         func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{deps: d}

	// mount routes
	phttp.GetJSON(r, "/health", h.health)
	phttp.GetJSON(r, "/ready", h.ready)
	phttp.GetJSON(r, "/version", h.version)
	phttp.GetJSON(r, "/service", h.service)
}

//
// Swagger DTOs and route docs
//

// HealthResponse is the health payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"rektwatch-api"`
	Started string `json:"started" example:"2026-10-14T13:00:00Z"`
	Now     string `json:"now"     example:"2026-10-14T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"            example:"postgres"`
	Status string `json:"status"          example:"ok"` // ok fail skipped
	Error  string `json:"error,omitempty" example:"pg: dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-14T13:05:00Z"`
}

// CollectorInfo is the state of an in-process collector
type CollectorInfo struct {
	Running         bool  `json:"running"         example:"true"`
	Ready           bool  `json:"ready"           example:"true"`
	RelaysConnected int   `json:"relaysConnected" example:"7"`
	LiveReceived    int64 `json:"liveReceived"    example:"42"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name      string         `json:"name"                example:"rektwatch-api"`
	Started   string         `json:"started"             example:"2026-10-14T13:00:00Z"`
	Uptime    int64          `json:"uptime"              example:"300"`
	Collector *CollectorInfo `json:"collector,omitempty"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.deps.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness check pinging the storage backend and the live feed
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	check := ReadyCheck{Name: h.deps.Backend, Status: "skipped"}
	if check.Name == "" {
		check.Name = "store"
	}
	if h.deps.Store != nil {
		check.Status = "ok"
		if err := h.deps.Store.Guard(ctx); err != nil {
			check.Status = "fail"
			check.Error = err.Error()
		}
	}

	checks := []ReadyCheck{check}
	if c := h.deps.Collector; c != nil {
		feed := ReadyCheck{Name: "relays", Status: "ok"}
		switch {
		case !c.Ready():
			feed.Status, feed.Error = "fail", "live feed not established"
		case c.RelaysConnected() == 0:
			feed.Status, feed.Error = "fail", "no relay connected"
		}
		checks = append(checks, feed)
	}

	overall := "ok"
	for _, c := range checks {
		if c.Status == "fail" {
			overall = "fail"
		}
	}
	return ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    h.deps.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info, uptime and in-process collector state
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := h.deps.Now().Sub(h.deps.StartedAt)
	out := ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}
	if c := h.deps.Collector; c != nil {
		out.Collector = &CollectorInfo{
			Running:         c.Running(),
			Ready:           c.Ready(),
			RelaysConnected: c.RelaysConnected(),
			LiveReceived:    c.LiveReceived(),
		}
	}
	return out, nil
}
