package net

import (
	"net/http"
	"testing"

	perr "gravitywatch/internal/platform/errors"
)

func TestOKEnvelope(t *testing.T) {
	t.Parallel()

	status, w := OK(map[string]int{"count": 3}, "req-1")
	if status != http.StatusOK || w.StatusCode != http.StatusOK {
		t.Fatalf("status: %d / %d", status, w.StatusCode)
	}
	if w.RequestID != "req-1" || w.Data == nil || w.Error != "" {
		t.Fatalf("envelope: %+v", w)
	}
}

func TestErrorEnvelopeMapsCode(t *testing.T) {
	t.Parallel()

	status, w := Error(perr.NotFoundf("finding %d", 42), "req-2")
	if status != http.StatusNotFound {
		t.Fatalf("status: %d", status)
	}
	if w.Code != perr.ErrorCodeNotFound || w.Error == "" {
		t.Fatalf("envelope: %+v", w)
	}
}

func TestErrorNilIsOK(t *testing.T) {
	t.Parallel()

	status, w := Error(nil, "req-3")
	if status != http.StatusOK || w.Error != "" {
		t.Fatalf("nil error should map to OK: %d %+v", status, w)
	}
}
