// Package module wires the analysis pipeline
package module

import (
	"net/http"

	"gravitywatch/internal/modkit"
	"gravitywatch/internal/modkit/httpkit"
	adom "gravitywatch/internal/services/alerts/domain"
	alertsvc "gravitywatch/internal/services/alerts/service"
	cldom "gravitywatch/internal/services/classify/domain"
	classifysvc "gravitywatch/internal/services/classify/service"
	cursorrepo "gravitywatch/internal/services/cursor/repo"
	cursorsvc "gravitywatch/internal/services/cursor/service"
	modmodule "gravitywatch/internal/modkit/module"
	fdom "gravitywatch/internal/services/findings/domain"
	findingsmod "gravitywatch/internal/services/findings/module"
	"gravitywatch/internal/services/pipeline/domain"
	"gravitywatch/internal/services/pipeline/repo"
	"gravitywatch/internal/services/pipeline/service"
)

// Wiring carries the adapter-backed ports the pipeline cannot build itself
type Wiring struct {
	Source   domain.SourcePort
	LLM      cldom.Backend
	Intel    cldom.Backend     // optional pre-check
	Notifier adom.NotifierPort // optional
}

// Ports exposed by the pipeline module
type Ports struct {
	Runner   domain.RunnerPort
	Outcomes domain.OutcomeRepo
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new pipeline module
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("pipeline"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	wiring, ok := b.Ports.(Wiring)
	if !ok {
		panic("pipeline module: expected WithPorts(pipeline/module.Wiring)")
	}
	if wiring.Source == nil || wiring.LLM == nil {
		panic("pipeline module: Wiring missing Source or LLM")
	}
	if deps.PG == nil {
		panic("pipeline module: requires deps.PG")
	}

	// Merge config + overrides
	cfg := FromConfig(deps.Cfg)
	if overrides.Lookback != 0 {
		cfg.Lookback = overrides.Lookback
	}
	if overrides.LLMBatchSize != 0 {
		cfg.LLMBatchSize = overrides.LLMBatchSize
	}
	if len(overrides.AlertCategories) != 0 {
		cfg.AlertCategories = overrides.AlertCategories
	}

	cursor := cursorsvc.New(deps.PG, cursorrepo.NewPG())
	findings := modmodule.MustPortsOf[fdom.WriterPort](findingsmod.New(deps))
	oracle := classifysvc.New(wiring.LLM, classifysvc.Config{BatchSize: cfg.LLMBatchSize})

	var intel cldom.OraclePort
	if wiring.Intel != nil {
		intel = classifysvc.New(wiring.Intel, classifysvc.Config{BatchSize: cfg.LLMBatchSize})
	}

	var alertCats []fdom.Category
	for _, raw := range cfg.AlertCategories {
		if c, ok := fdom.ParseCategory(raw); ok {
			alertCats = append(alertCats, c)
		}
	}
	eval := alertsvc.New(alertsvc.Config{Categories: alertCats})

	outcomes := repo.NewPG().Bind(deps.PG)

	runner := service.New(
		cursor,
		wiring.Source,
		intel,
		oracle,
		findings,
		eval,
		wiring.Notifier,
		outcomes,
		service.Config{Lookback: cfg.Lookback},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: runner, Outcomes: outcomes}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "pipeline" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares satisfies modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ httpkit.Router) {}
