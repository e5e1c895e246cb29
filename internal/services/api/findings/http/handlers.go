// Package http provides http transport for the findings API
package http

import (
	"fmt"
	stdhttp "net/http"
	"time"

	"gravitywatch/internal/modkit/httpkit"
	"gravitywatch/internal/services/api/findings/domain"
	fdom "gravitywatch/internal/services/findings/domain"
)

// Register mounts findings endpoints on the given router
func Register(r httpkit.Router, reader fdom.ReaderPort) {
	h := &handlers{reader: reader}

	// filtered keyset search
	httpkit.PostJSON[domain.SearchInput](r, "/search", h.search)

	// latest findings, newest first
	httpkit.Get(r, "/recent", h.recent)
}

type handlers struct{ reader fdom.ReaderPort }

func (h *handlers) search(r *stdhttp.Request, in domain.SearchInput) (any, error) {
	f := fdom.Filter{
		Domain:   in.Domain,
		Category: fdom.Category(in.Category),
		Source:   fdom.Source(in.Source),
		AfterID:  in.AfterID,
		Limit:    in.Limit,
	}
	if in.Since != nil {
		f.Since = *in.Since
	}
	if in.Until != nil {
		f.Until = *in.Until
	}
	if in.AfterTS != nil {
		f.AfterTS = *in.AfterTS
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}

	items, err := h.reader.Query(r.Context(), f)
	if err != nil {
		return nil, err
	}

	cursor := ""
	hasMore := len(items) == f.Limit
	if len(items) > 0 {
		last := items[len(items)-1]
		cursor = fmt.Sprintf("%s,%d", last.QueryTS.Format(time.RFC3339Nano), last.ID)
	}
	return httpkit.List(items, f.Limit, cursor, hasMore), nil
}

func (h *handlers) recent(r *stdhttp.Request) (any, error) {
	return h.reader.Recent(r.Context(), 50)
}
