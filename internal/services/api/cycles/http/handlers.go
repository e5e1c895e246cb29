// Package http provides http transport for cycle outcomes
package http

import (
	stdhttp "net/http"

	"gravitywatch/internal/modkit/httpkit"
	pdom "gravitywatch/internal/services/pipeline/domain"
)

// Register mounts cycle endpoints on the given router
func Register(r httpkit.Router, outcomes pdom.OutcomeRepo) {
	h := &handlers{outcomes: outcomes}

	// recent cycle outcomes, newest first
	httpkit.Get(r, "/recent", h.recent)
}

type handlers struct{ outcomes pdom.OutcomeRepo }

func (h *handlers) recent(r *stdhttp.Request) (any, error) {
	return h.outcomes.Recent(r.Context(), 20)
}
