// Package module wires the findings service
package module

import (
	"net/http"

	"gravitywatch/internal/modkit"
	"gravitywatch/internal/modkit/httpkit"
	"gravitywatch/internal/services/findings/domain"
	"gravitywatch/internal/services/findings/repo"
	"gravitywatch/internal/services/findings/service"
)

// Ports exposed by the findings module
type Ports struct {
	Writer domain.WriterPort
	Reader domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new findings module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	modkit.Build(append([]modkit.Option{
		modkit.WithName("findings"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	if deps.PG == nil {
		panic("findings module: requires deps.PG")
	}

	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{deps: deps}
	m.ports = Ports{
		Writer: svc,
		Reader: svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "findings" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares satisfies modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ httpkit.Router) {}
