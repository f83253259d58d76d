// @title         rektwatch API
// @version       1.0
// @description   Read only endpoints for liquidation stats collected from Nostr

package main

import (
	"context"
	"os/signal"
	"syscall"

	"rektwatch/internal/core/version"
	"rektwatch/internal/modkit"
	"rektwatch/internal/modkit/module"
	"rektwatch/internal/modkit/repokit"
	"rektwatch/internal/platform/config"
	"rektwatch/internal/platform/logger"
	"rektwatch/internal/platform/metrics"
	phttp "rektwatch/internal/platform/net/http"
	"rektwatch/internal/platform/store"

	"rektwatch/internal/services/api"
	collectormod "rektwatch/internal/services/collector/module"
	rektdom "rektwatch/internal/services/rekt/domain"
	rektmod "rektwatch/internal/services/rekt/module"
)

const service = "rektwatch-api"

func main() {
	config.LoadDotEnv()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = service
	}
	logger.Init(opt)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// open the selected backend (CORE_STORE_BACKEND)
	st, err := store.Open(ctx, store.ConfigFromEnv(service), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	m := metrics.New(version.Version, version.Commit)
	deps := modkit.Deps{Cfg: root, Store: st, Metrics: m}

	rekt, err := rektmod.New(ctx, deps)
	if err != nil {
		l.Panic().Err(err).Msg("rekt module failed")
	}

	opts := api.OptionsFromConfig(root)
	opts.Store = st
	opts.Metrics = m
	opts.Rekt = rekt.RektPorts()

	// the memory backend only ever sees what this process collects
	if apiCfg.MayBool("COLLECTOR", st.Backend == store.BackendMemory) {
		cm, err := collectormod.New(deps, module.MustPortsOf[rektdom.IngestPort](rekt))
		if err != nil {
			l.Panic().Err(err).Msg("collector module failed")
		}
		c := cm.Collector()
		opts.Collector = c
		go func() {
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				l.Error().Err(err).Msg("collector start failed")
			}
		}()
		defer func() {
			if err := c.Stop(context.Background()); err != nil {
				l.Error().Err(err).Msg("collector stop failed")
			}
		}()
	}

	// http server (CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg.MayString("ADDR", ":4000"))

	api.Mount(srv.Router(), opts)

	// run until SIGINT/SIGTERM
	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
