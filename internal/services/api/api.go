// Package api provides the HTTP API for the application
package api

import (
	"rektwatch/internal/platform/config"
	"rektwatch/internal/platform/metrics"
	phttp "rektwatch/internal/platform/net/http"
	"rektwatch/internal/platform/net/middleware"
	"rektwatch/internal/platform/store"

	"rektwatch/internal/modkit"
	"rektwatch/internal/modkit/httpkit"
	"rektwatch/internal/modkit/module"
	"rektwatch/internal/modkit/swaggerkit"

	metahttp "rektwatch/internal/services/api/meta/http"
	metamod "rektwatch/internal/services/api/meta/module"
	statsmod "rektwatch/internal/services/api/stats/module"
	statusmod "rektwatch/internal/services/api/status/module"

	// rekt owns the store and the read ports
	rektmod "rektwatch/internal/services/rekt/module"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	Metrics       *metrics.Metrics
	Rekt          rektmod.Ports
	Collector     metahttp.Collector // optional; set when this process collects
	EnableSwagger bool
	EnableMetrics bool
	CORSOrigins   []string
}

// OptionsFromConfig reads the CORE_API_ flags
func OptionsFromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_API_")
	return Options{
		Config:        cfg,
		EnableSwagger: c.MayBool("SWAGGER", false),
		EnableMetrics: c.MayBool("METRICS", false),
		CORSOrigins:   c.MayCSV("CORS_ORIGINS", nil),
	}
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg:     opt.Config,
		Store:   opt.Store,
		Metrics: opt.Metrics,
	}
	withRekt := modkit.WithPorts(opt.Rekt)

	meta := modkit.Builder(metamod.New)
	if opt.Collector != nil {
		meta = metamod.WithCollector(opt.Collector)
	}
	builders := []modkit.Builder{meta, statsmod.New, statusmod.New}
	mods := make([]module.Module, 0, len(builders))
	for _, build := range builders {
		mods = append(mods, build(deps, withRekt))
	}

	if opt.EnableMetrics && opt.Metrics != nil {
		r.Use(opt.Metrics.Middleware)
		r.Handle("/metrics", opt.Metrics.Handler())
	}

	// Swagger UI and document
	swaggerkit.Mount(r, opt.EnableSwagger)

	// versioned API with a common middleware stack
	stack := httpkit.CommonStack(httpkit.StackOptions{
		CORS: middleware.CORSOptions{AllowedOrigins: opt.CORSOrigins},
	})
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			if p := m.Ports(); p != nil {
				module.Register(m.Name(), p)
			}

			// mount module routes under its prefix
			m.MountRoutes(api)
		}
	})
}
