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
	"rektwatch/internal/platform/store"

	collectormod "rektwatch/internal/services/collector/module"
	rektdom "rektwatch/internal/services/rekt/domain"
	rektmod "rektwatch/internal/services/rekt/module"
)

const service = "rektwatch-collector"

func main() {
	config.LoadDotEnv()

	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = service
	}
	logger.Init(opt)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	if st.Backend == store.BackendMemory {
		l.Warn().Msg("memory backend: collected events are lost on exit and invisible to the api")
	}

	deps := modkit.Deps{Cfg: config.New(), Store: st, Metrics: metrics.New(version.Version, version.Commit)}
	rekt, err := rektmod.New(ctx, deps)
	if err != nil {
		l.Panic().Err(err).Msg("rekt module failed")
	}
	cm, err := collectormod.New(deps, module.MustPortsOf[rektdom.IngestPort](rekt))
	if err != nil {
		l.Panic().Err(err).Msg("collector module failed")
	}
	c := cm.Collector()

	if err := c.Start(ctx); err != nil && ctx.Err() == nil {
		l.Panic().Err(err).Msg("collector start failed")
	}
	if report, ok := c.LastBackfill(); ok {
		l.Info().
			Str("phase", string(report.Phase)).
			Int("stored", report.Stored).
			Dur("elapsed", report.Elapsed).
			Msg("backfill complete")
	}

	<-ctx.Done()
	l.Info().Msg("shutting down")
	if err := c.Stop(context.Background()); err != nil {
		l.Error().Err(err).Msg("collector stop failed")
	}
}
