package modkit

import (
	"net/http"
	"testing"

	"gravitywatch/internal/modkit/httpkit"
)

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	b := Build(WithName("findings"), WithPrefix("/findings"))
	if b.Name != "findings" || b.Prefix != "/findings" {
		t.Fatalf("built: %+v", b)
	}
	if b.Subrouter == nil || b.Register == nil {
		t.Fatal("hooks should default to no-ops")
	}
	// default subrouter is identity
	if got := b.Subrouter(nil); got != nil {
		t.Fatal("default subrouter should pass through")
	}
}

func TestBuildCollectsMiddleware(t *testing.T) {
	t.Parallel()

	mw := func(next http.Handler) http.Handler { return next }
	b := Build(WithMiddlewares(mw, mw), WithMiddlewares(mw))
	if len(b.Mw) != 3 {
		t.Fatalf("mw count: %d", len(b.Mw))
	}
}

func TestBuildCarriesPorts(t *testing.T) {
	t.Parallel()

	type ports struct{ N int }
	b := Build(WithPorts(ports{N: 7}))
	p, ok := b.Ports.(ports)
	if !ok || p.N != 7 {
		t.Fatalf("ports: %+v", b.Ports)
	}
}

func TestBuildRegisterHook(t *testing.T) {
	t.Parallel()

	called := false
	b := Build(WithRegister(func(httpkit.Router) { called = true }))
	b.Register(nil)
	if !called {
		t.Fatal("register hook should run")
	}
}
