// Package module wires the cycles API using modkit
package module

import (
	"net/http"

	"gravitywatch/internal/modkit"
	"gravitywatch/internal/modkit/httpkit"
	str "gravitywatch/internal/platform/strings"
	cycleshttp "gravitywatch/internal/services/api/cycles/http"
	pdom "gravitywatch/internal/services/pipeline/domain"
	pipelinerepo "gravitywatch/internal/services/pipeline/repo"
)

// Module implements the cycles API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    any
	register func(httpkit.Router)
}

// New constructs the cycles API module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("cycles"),
		modkit.WithPrefix("/cycles"),
	}, opts...)...)

	if deps.PG == nil {
		panic("cycles api module: requires deps.PG")
	}

	outcomes := pipelinerepo.NewPG().Bind(deps.PG)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
	}
	m.ports = struct{ Outcomes pdom.OutcomeRepo }{Outcomes: outcomes}

	external := b.Register
	m.register = func(r httpkit.Router) {
		cycleshttp.Register(r, outcomes)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
