// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"rektwatch/internal/modkit"
	phttp "rektwatch/internal/platform/net/http"
	str "rektwatch/internal/platform/strings"
	metahttp "rektwatch/internal/services/api/meta/http"
)

// DefaultService names the binary in health and version payloads
const DefaultService = "rektwatch-api"

// Module implements the modkit.Module interface
type Module struct {
	b       modkit.Built
	handler metahttp.Deps
}

// New constructs a meta module under /meta
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	now := deps.Clock()
	hd := metahttp.Deps{
		ServiceName: DefaultService,
		StartedAt:   now(),
		Backend:     "memory",
		Now:         now,
	}
	if deps.Store != nil {
		hd.Store = deps.Store
		hd.Backend = string(deps.Store.Backend)
	}
	return &Module{b: b, handler: hd}
}

// WithCollector is New plus an in-process collector reported on /ready and /service
func WithCollector(c metahttp.Collector) modkit.Builder {
	return func(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
		m := New(deps, opts...).(*Module)
		m.handler.Collector = c
		return m
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r phttp.Router) {
	m.b.Mount(r, func(rr phttp.Router) { metahttp.Register(rr, m.handler) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.Or(m.b.Name, "meta") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
