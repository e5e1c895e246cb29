package dedupe

import "testing"

type lookup struct {
	domain string
	client string
}

func TestByKeyPreservesFirstSeenOrder(t *testing.T) {
	t.Parallel()

	in := []lookup{
		{"b.test", "10.0.0.2"},
		{"a.test", "10.0.0.1"},
		{"b.test", "10.0.0.3"},
		{"c.test", "10.0.0.1"},
		{"a.test", "10.0.0.1"},
	}
	r := ByKey(in, func(l lookup) string { return l.domain })

	want := []string{"b.test", "a.test", "c.test"}
	if len(r.Keys) != len(want) {
		t.Fatalf("keys: %v", r.Keys)
	}
	for i := range want {
		if r.Keys[i] != want[i] {
			t.Fatalf("order: %v", r.Keys)
		}
	}
	if r.Dropped != 2 {
		t.Fatalf("dropped: %d", r.Dropped)
	}
	if len(r.Members["b.test"]) != 2 {
		t.Fatalf("members: %v", r.Members["b.test"])
	}
}

func TestByKeySkipsEmptyKeys(t *testing.T) {
	t.Parallel()

	in := []lookup{{"", "10.0.0.1"}, {"x.test", "10.0.0.1"}}
	r := ByKey(in, func(l lookup) string { return l.domain })
	if len(r.Keys) != 1 || r.Dropped != 1 {
		t.Fatalf("keys=%v dropped=%d", r.Keys, r.Dropped)
	}
}

func TestByKeyEmptyInput(t *testing.T) {
	t.Parallel()

	r := ByKey(nil, func(l lookup) string { return l.domain })
	if len(r.Keys) != 0 || r.Dropped != 0 {
		t.Fatalf("unexpected: %+v", r)
	}
}
