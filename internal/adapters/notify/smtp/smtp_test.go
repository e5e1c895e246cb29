package smtp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/go-mail"

	perr "gravitywatch/internal/platform/errors"
	adom "gravitywatch/internal/services/alerts/domain"
	fdom "gravitywatch/internal/services/findings/domain"
)

type fakeSender struct {
	msgs []*mail.Msg
	err  error
}

func (s *fakeSender) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	s.msgs = append(s.msgs, msgs...)
	return s.err
}

func batch() *adom.Batch {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mal := fdom.Finding{QueryTS: ts, Client: "10.0.0.1", Domain: "c2.test",
		Category: fdom.CategoryMalicious, Reason: "known c2", Source: fdom.SourceAI}
	sus := fdom.Finding{QueryTS: ts.Add(time.Second), Domain: "meh.test",
		Category: fdom.CategorySuspicious, Source: fdom.SourceAI}
	return &adom.Batch{
		Findings: []fdom.Finding{mal, sus},
		ByCategory: map[fdom.Category][]fdom.Finding{
			fdom.CategoryMalicious:  {mal},
			fdom.CategorySuspicious: {sus},
		},
		Triggered: []fdom.Category{fdom.CategoryMalicious},
	}
}

func TestBodyGroupsByCategory(t *testing.T) {
	t.Parallel()

	body := Body(batch())
	for _, want := range []string{
		"== malicious (1) ==",
		"== suspicious (1) ==",
		"Domain: c2.test",
		"Client: 10.0.0.1",
		"Reason: known c2",
		"Client: unknown",
		"Reason: n/a",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
	// triggered category renders first
	if strings.Index(body, "malicious") > strings.Index(body, "suspicious") {
		t.Fatalf("category order:\n%s", body)
	}
}

func TestSubjectCountsFindings(t *testing.T) {
	t.Parallel()

	if got := Subject(batch()); !strings.Contains(got, "2 noteworthy") {
		t.Fatalf("subject: %q", got)
	}
}

func TestNotifySendsOneMessage(t *testing.T) {
	t.Parallel()

	s := &fakeSender{}
	n := &Notifier{cfg: Config{From: "watch@home.lan", To: "admin@home.lan"}, client: s}

	if err := n.Notify(context.Background(), batch()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(s.msgs) != 1 {
		t.Fatalf("messages: %d", len(s.msgs))
	}
}

func TestNotifyNilBatchIsNoop(t *testing.T) {
	t.Parallel()

	s := &fakeSender{}
	n := &Notifier{cfg: Config{From: "a@b.c", To: "d@e.f"}, client: s}
	if err := n.Notify(context.Background(), nil); err != nil || len(s.msgs) != 0 {
		t.Fatalf("noop violated: %v %d", err, len(s.msgs))
	}
}

func TestNotifySendFailure(t *testing.T) {
	t.Parallel()

	s := &fakeSender{err: errors.New("connection refused")}
	n := &Notifier{cfg: Config{From: "a@b.c", To: "d@e.f"}, client: s}
	err := n.Notify(context.Background(), batch())
	if !perr.IsCode(err, perr.ErrorCodeNotification) {
		t.Fatalf("err: %v", err)
	}
}
