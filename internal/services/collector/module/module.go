// Package module wires the collector from the relay pool down to the rekt store
package module

import (
	"rektwatch/internal/adapters/nostr"
	"rektwatch/internal/modkit"
	perr "rektwatch/internal/platform/errors"
	"rektwatch/internal/platform/logger"
	phttp "rektwatch/internal/platform/net/http"
	backfill "rektwatch/internal/services/backfill/module"
	"rektwatch/internal/services/collector/service"
	"rektwatch/internal/services/collector/source"
	live "rektwatch/internal/services/live/module"
	rekt "rektwatch/internal/services/rekt/domain"
)

// Ports exposes the collector lifecycle
type Ports struct {
	Collector *service.Service
}

// Module implements the collector module
type Module struct {
	ports Ports
}

// New builds the relay pool and the backfill and live services on top of
// it. An npub that does not decode is a startup error.
func New(deps modkit.Deps, ingest rekt.IngestPort) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	author, err := nostr.PubKey(opts.NPub)
	if err != nil {
		return nil, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid publisher key"), "CORE_NOSTR_NPUB")
	}

	pool := nostr.NewPool(opts.Relays, nostr.PoolConfig{
		Verify: opts.VerifySig,
		Relay: nostr.RelayConfig{
			DialTimeout:  opts.DialTimeout,
			PingInterval: opts.PingInterval,
			EOSETimeout:  opts.EOSETimeout,
			OnState:      func(_ string, up bool) { deps.Metrics.RelayConnected(up) },
			OnEvent:      deps.Metrics.RelayEvent,
		},
	})
	src := source.New(pool, author)

	bf := backfill.New(deps, src, ingest)
	lv := live.New(deps, src, ingest, nil)
	svc := service.New(bf.Runner(), lv.Subscriber(), deps.Metrics, pool)

	logger.Named("collector").Info().
		Str("author", author).
		Int("relays", len(pool.URLs())).
		Bool("verify", opts.VerifySig).
		Msg("collector wired")
	return &Module{ports: Ports{Collector: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "collector" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Collector is the lifecycle handle
func (m *Module) Collector() *service.Service { return m.ports.Collector }

// MountRoutes is a no-op
func (m *Module) MountRoutes(phttp.Router) {}
