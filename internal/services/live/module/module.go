// Package module provides the live subscriber module
package module

import (
	"time"

	"rektwatch/internal/modkit"
	"rektwatch/internal/platform/config"
	phttp "rektwatch/internal/platform/net/http"
	"rektwatch/internal/services/live/domain"
	"rektwatch/internal/services/live/service"
	rekt "rektwatch/internal/services/rekt/domain"
)

// Options holds configuration for the live subscriber
type Options struct {
	Queue         int
	IngestTimeout time.Duration
}

// FromConfig reads CORE_LIVE_*
func FromConfig(cfg config.Conf) Options {
	lc := cfg.Prefix("CORE_LIVE_")
	return Options{
		Queue:         lc.MayInt("QUEUE", 256),
		IngestTimeout: lc.MayDuration("INGEST_TIMEOUT", 5*time.Second),
	}
}

// Ports defines the live module ports
type Ports struct {
	Subscriber domain.SubscriberPort
}

// Module implements the live module
type Module struct {
	ports Ports
}

// New wires the subscriber; hooks may be nil
func New(deps modkit.Deps, src domain.Source, ingest rekt.IngestPort, onReady func()) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(src, ingest, service.Config{
		Queue:         opts.Queue,
		IngestTimeout: opts.IngestTimeout,
		OnReady:       onReady,
	}, deps.Clock())
	return &Module{ports: Ports{Subscriber: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "live" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Subscriber is the typed port
func (m *Module) Subscriber() domain.SubscriberPort { return m.ports.Subscriber }

// MountRoutes is a no-op
func (m *Module) MountRoutes(phttp.Router) {}
