// Package module wires the status read into the API
package module

import (
	"rektwatch/internal/modkit"
	mk "rektwatch/internal/modkit/module"
	phttp "rektwatch/internal/platform/net/http"
	str "rektwatch/internal/platform/strings"
	statushttp "rektwatch/internal/services/api/status/http"
	rektmod "rektwatch/internal/services/rekt/module"
)

// Module mounts /status
type Module struct {
	b     modkit.Built
	ports rektmod.Ports
}

// New builds the status module from injected or registered rekt ports
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("status")}, opts...)...)

	ports, ok := b.Ports.(rektmod.Ports)
	if !ok {
		ports, ok = mk.PortsAs[rektmod.Ports](rektmod.Name)
	}
	if !ok || ports.Query == nil {
		panic("status: rekt query port not wired")
	}
	return &Module{b: b, ports: ports}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r phttp.Router) {
	m.b.Mount(r, func(rr phttp.Router) { statushttp.Register(rr, m.ports.Query) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.Or(m.b.Name, "status") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
