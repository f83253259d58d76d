// Package module wires the stats reads into the API using modkit
package module

import (
	"rektwatch/internal/modkit"
	mk "rektwatch/internal/modkit/module"
	phttp "rektwatch/internal/platform/net/http"
	str "rektwatch/internal/platform/strings"
	statshttp "rektwatch/internal/services/api/stats/http"
	rektmod "rektwatch/internal/services/rekt/module"
)

// Module mounts /stats and /timeseries
type Module struct {
	b     modkit.Built
	ports rektmod.Ports
}

// New builds the stats module. The rekt ports come from WithPorts or,
// failing that, from the registry.
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("stats")}, opts...)...)

	ports, ok := b.Ports.(rektmod.Ports)
	if !ok {
		ports, ok = mk.PortsAs[rektmod.Ports](rektmod.Name)
	}
	if !ok || ports.Query == nil {
		panic("stats: rekt query port not wired")
	}
	return &Module{b: b, ports: ports}
}

// MountRoutes mounts the module routes on r
func (m *Module) MountRoutes(r phttp.Router) {
	m.b.Mount(r, func(rr phttp.Router) { statshttp.Register(rr, m.ports.Query) })
}

// Name returns the module name
func (m *Module) Name() string { return str.Or(m.b.Name, "stats") }

// Ports returns nil; stats only consumes
func (m *Module) Ports() any { return nil }
