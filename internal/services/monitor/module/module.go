// Package module implements the monitor module
package module

import (
	"warwatch/internal/modkit"
	"warwatch/internal/modkit/repokit"
	"warwatch/internal/platform/store"
	"warwatch/internal/services/monitor/domain"
	"warwatch/internal/services/monitor/repo"
	"warwatch/internal/services/monitor/service"
)

// Ports exposed by the monitor module
type Ports struct {
	Worker domain.WorkerPort
	Reader domain.ReaderPort

	// Storage is exposed for boot-time schema setup
	Storage repo.Storage
}

// Module implements module.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the monitor module. driver selects the repo dialect and must
// match the store the deps carry
func New(deps modkit.Deps, driver string, ports domain.Ports, overrides Options) *Module {
	if ports.Snapshots == nil || ports.Notifier == nil {
		panic("monitor module: Ports missing Snapshots or Notifier")
	}
	if deps.DB == nil {
		panic("monitor module: nil DB")
	}

	var binder repokit.Binder[repo.Storage]
	switch driver {
	case store.DriverPostgres:
		binder = repo.NewPG()
	case store.DriverSQLite, "":
		binder = repo.NewLite()
	default:
		panic("monitor module: unknown store driver " + driver)
	}
	storage := repokit.MustBind(binder, deps.DB)

	svc, err := service.New(storage, ports.Snapshots, ports.Notifier, service.Config{
		ClanTag:           overrides.ClanTag,
		LifecycleEvery:    overrides.LifecycleEvery,
		AttacksEvery:      overrides.AttacksEvery,
		ErrorBackoff:      overrides.ErrorBackoff,
		MaxAttacksPerPoll: overrides.MaxAttacksPerPoll,
		Timezone:          overrides.Timezone,
	})
	if err != nil {
		panic(err)
	}

	m := &Module{deps: deps}
	m.ports = Ports{
		Worker:  svc,
		Reader:  svc,
		Storage: storage,
	}
	return m
}

// Name satisfies module.Module
func (m *Module) Name() string { return "monitor" }

// Ports satisfies module.Module
func (m *Module) Ports() any { return m.ports }
