package domain

import (
	"testing"
	"time"
)

func rec(sec int, d string) QueryRecord {
	return QueryRecord{Timestamp: time.Unix(int64(sec), 0).UTC(), Domain: d}
}

func TestGroupsCanonicalizesAndDeduplicates(t *testing.T) {
	t.Parallel()

	groups, dropped := Groups([]QueryRecord{
		rec(100, "Ads.Example.COM."),
		rec(101, "tracker.test"),
		rec(102, "ads.example.com"),
	})
	if dropped != 0 {
		t.Fatalf("dropped: %d", dropped)
	}
	if len(groups) != 2 {
		t.Fatalf("groups: %v", groups)
	}
	if groups[0].Domain != "ads.example.com" || groups[1].Domain != "tracker.test" {
		t.Fatalf("order: %v", groups)
	}
	if len(groups[0].Records) != 2 {
		t.Fatalf("members: %v", groups[0].Records)
	}
}

func TestGroupsDropsMalformedDomains(t *testing.T) {
	t.Parallel()

	groups, dropped := Groups([]QueryRecord{
		rec(100, ""),
		rec(101, "ok.test"),
		rec(102, "bad domain.test"),
	})
	if dropped != 2 {
		t.Fatalf("dropped: %d", dropped)
	}
	if len(groups) != 1 || groups[0].Domain != "ok.test" {
		t.Fatalf("groups: %v", groups)
	}
}
