// Package module wires the rekt store and service for the api and collector
package module

import (
	"context"

	"rektwatch/internal/modkit"
	mk "rektwatch/internal/modkit/module"
	phttp "rektwatch/internal/platform/net/http"
	"rektwatch/internal/services/rekt/domain"
	"rektwatch/internal/services/rekt/repo"
	"rektwatch/internal/services/rekt/service"
)

// Name is the registry key of the rekt module
const Name = "rekt"

// Ports exposed by the rekt module
type Ports struct {
	Ingest domain.IngestPort
	Query  domain.QueryPort
	Store  domain.Store
}

// Module owns the event store bound to the opened backend
type Module struct {
	ports Ports
}

// New binds the store to deps.Store, applies the schema and registers the ports
func New(ctx context.Context, deps modkit.Deps) (*Module, error) {
	st, err := repo.FromStore(ctx, deps.Store)
	if err != nil {
		return nil, err
	}
	svc := service.New(st, deps.Metrics, deps.Clock())

	m := &Module{ports: Ports{Ingest: svc, Query: svc, Store: st}}
	mk.Register(Name, m.ports)
	return m, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; the api modules serve the reads
func (m *Module) MountRoutes(phttp.Router) {}

// RektPorts is the typed view of Ports
func (m *Module) RektPorts() Ports { return m.ports }
