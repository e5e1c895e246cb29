package canon

import "testing"

func TestDomainLowercasesAndTrims(t *testing.T) {
	t.Parallel()

	got, err := Domain("  Ads.DoubleClick.NET.  ")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != "ads.doubleclick.net" {
		t.Fatalf("got %q", got)
	}
}

func TestDomainFoldsFullwidth(t *testing.T) {
	t.Parallel()

	got, err := Domain("ｅｘａｍｐｌｅ.com")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != "example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestDomainKeepsServiceLabels(t *testing.T) {
	t.Parallel()

	got, err := Domain("_dns-sd._udp.local")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != "_dns-sd._udp.local" {
		t.Fatalf("got %q", got)
	}
}

func TestDomainRejectsMalformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"   ",
		"two..dots.example",
		"spaces in.example",
		"semi;colon.example",
	}
	for _, in := range cases {
		if _, err := Domain(in); err == nil {
			t.Fatalf("Domain(%q) should fail", in)
		}
	}
}

func TestDomainRejectsOverlong(t *testing.T) {
	t.Parallel()

	label := make([]byte, 64)
	for i := range label {
		label[i] = 'a'
	}
	if _, err := Domain(string(label) + ".example"); err == nil {
		t.Fatal("64-byte label should fail")
	}
}
