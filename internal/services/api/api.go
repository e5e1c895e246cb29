// Package api provides the HTTP API for finding review
package api

import (
	"gravitywatch/internal/platform/config"
	"gravitywatch/internal/platform/logger"
	phttp "gravitywatch/internal/platform/net/http"
	"gravitywatch/internal/platform/store"

	"gravitywatch/internal/modkit"
	"gravitywatch/internal/modkit/httpkit"
	"gravitywatch/internal/modkit/module"

	cyclesmod "gravitywatch/internal/services/api/cycles/module"
	findingsmod "gravitywatch/internal/services/api/findings/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	mods := []module.Module{
		findingsmod.New(deps),
		cyclesmod.New(deps),
	}

	// versioned API with a common middleware stack
	httpkit.MountUnder(r, "/api/v1", httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
