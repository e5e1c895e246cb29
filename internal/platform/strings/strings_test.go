package strings

import (
	"testing"

	"gravitywatch/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	t.Parallel()

	def := []string{"GET"}
	if got := IfEmpty(nil, def); len(got) != 1 || got[0] != "GET" {
		t.Fatalf("got %v", got)
	}
	in := []string{"POST"}
	if got := IfEmpty(in, def); got[0] != "POST" {
		t.Fatalf("got %v", got)
	}
}

func TestMustPrefix(t *testing.T) {
	t.Parallel()

	if got := MustPrefix(" findings/ "); got != "/findings" {
		t.Fatalf("got %q", got)
	}
	testkit.MustPanic(t, func() { MustPrefix("  / ") })
}

func TestSQLNull(t *testing.T) {
	t.Parallel()

	if SQLNull("  ") != nil {
		t.Fatal("blank should map to nil")
	}
	if SQLNull("dns.test") != "dns.test" {
		t.Fatal("non-blank should pass through")
	}
}
