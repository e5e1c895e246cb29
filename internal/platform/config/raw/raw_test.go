package raw

import "testing"

func TestGetPrefixAndTrim(t *testing.T) {
	t.Setenv("GW_NAME", " gravitywatch ")
	t.Setenv("SOURCE_PIHOLE_URL", " http://pi.hole ")

	root := New()
	src := root.Prefix("SOURCE_PIHOLE_")

	if got := root.Get("GW_NAME", "x"); got != "gravitywatch" {
		t.Fatalf("root get: got %q", got)
	}
	if got := src.Get("URL", "x"); got != "http://pi.hole" {
		t.Fatalf("prefixed get: got %q", got)
	}
	if got := src.Get("MISSING", "defv"); got != "defv" {
		t.Fatalf("default: got %q", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("FLAG_ON", "yes")
	t.Setenv("FLAG_OFF", "0")
	t.Setenv("FLAG_JUNK", "maybe")

	c := New()
	if !c.GetBool("FLAG_ON", false) {
		t.Fatal("yes should parse true")
	}
	if c.GetBool("FLAG_OFF", true) {
		t.Fatal("0 should parse false")
	}
	if c.GetBool("FLAG_JUNK", true) {
		t.Fatal("junk should not parse true")
	}
	if !c.GetBool("FLAG_MISSING", true) {
		t.Fatal("missing should fall back to default")
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("N_OK", "42")
	t.Setenv("N_BAD", "4x2")

	c := New()
	if got := c.GetInt("N_OK", 7); got != 42 {
		t.Fatalf("got %d", got)
	}
	if got := c.GetInt("N_BAD", 7); got != 7 {
		t.Fatalf("non-numeric should default, got %d", got)
	}
	if got := c.GetInt("N_MISSING", 7); got != 7 {
		t.Fatalf("missing should default, got %d", got)
	}
}
