// Package module provides the backfill module
package module

import (
	"rektwatch/internal/modkit"
	phttp "rektwatch/internal/platform/net/http"
	"rektwatch/internal/services/backfill/domain"
	"rektwatch/internal/services/backfill/guardrails"
	"rektwatch/internal/services/backfill/service"
	rekt "rektwatch/internal/services/rekt/domain"
)

// Ports defines the backfill module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the backfill module
type Module struct {
	ports Ports
}

// New wires the service from CORE_BACKFILL_* in deps.Cfg. It does not mount any routes.
func New(deps modkit.Deps, src domain.Source, ingest rekt.IngestPort) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(src, ingest, service.Config{
		Lookback:      opts.Lookback,
		Limit:         opts.Limit,
		FallbackLimit: opts.FallbackLimit,
		Seed:          opts.Seed,
		ProgressEvery: opts.ProgressEvery,
		Timeouts: guardrails.Timeouts{
			Query:  opts.Timeout,
			Ingest: opts.IngestTimeout,
		},
	}, deps.Clock())
	return &Module{ports: Ports{Runner: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "backfill" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Runner is the typed backfill port
func (m *Module) Runner() domain.RunnerPort { return m.ports.Runner }

// MountRoutes is a no-op as backfill has no routes
func (m *Module) MountRoutes(phttp.Router) {}
