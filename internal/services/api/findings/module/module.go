// Package module wires the findings API using modkit
package module

import (
	"net/http"

	"gravitywatch/internal/modkit"
	"gravitywatch/internal/modkit/httpkit"
	str "gravitywatch/internal/platform/strings"
	findingshttp "gravitywatch/internal/services/api/findings/http"
	fdom "gravitywatch/internal/services/findings/domain"
	findingsrepo "gravitywatch/internal/services/findings/repo"
	findingssvc "gravitywatch/internal/services/findings/service"
)

// Module implements the findings API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    any
	register func(httpkit.Router)
}

// New constructs the findings API module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("findings"),
		modkit.WithPrefix("/findings"),
	}, opts...)...)

	if deps.PG == nil {
		panic("findings api module: requires deps.PG")
	}

	svc := findingssvc.New(deps.PG, findingsrepo.NewPG())

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
	}
	m.ports = struct{ Reader fdom.ReaderPort }{Reader: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		findingshttp.Register(r, svc)
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
