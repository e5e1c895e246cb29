// Package smtp delivers alert digests over email
package smtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"gravitywatch/internal/platform/config"
	perr "gravitywatch/internal/platform/errors"
	adom "gravitywatch/internal/services/alerts/domain"
	fdom "gravitywatch/internal/services/findings/domain"
)

// Config for the SMTP notifier
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// FromConfig extracts Config from the given config.Conf
func FromConfig(cfg config.Conf) Config {
	p := cfg.Prefix("NOTIFY_SMTP_")
	c := Config{
		Host:     p.MustString("HOST"),
		Port:     p.MayInt("PORT", 587),
		Username: p.MayString("USERNAME", ""),
		Password: p.MayString("PASSWORD", ""),
		From:     p.MustString("FROM"),
		To:       p.MustString("TO"),
	}
	if c.Username == "" {
		c.Username = c.From
	}
	return c
}

// sender is the delivery seam; swapped out in tests
type sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Notifier implements alerts/domain.NotifierPort
type Notifier struct {
	cfg    Config
	client sender
}

// New constructs an SMTP notifier
func New(cfg Config) (*Notifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(15 * time.Second),
	}
	// port 465 is implicit TLS, everything else negotiates STARTTLS
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeNotification, "init smtp client")
	}
	return &Notifier{cfg: cfg, client: client}, nil
}

// Notify implements alerts/domain.NotifierPort
func (n *Notifier) Notify(ctx context.Context, b *adom.Batch) error {
	if b == nil || len(b.Findings) == 0 {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return perr.Wrap(err, perr.ErrorCodeNotification, "set sender")
	}
	if err := msg.To(n.cfg.To); err != nil {
		return perr.Wrap(err, perr.ErrorCodeNotification, "set recipient")
	}
	msg.Subject(Subject(b))
	msg.SetBodyString(mail.TypeTextPlain, Body(b))

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return perr.Wrap(err, perr.ErrorCodeNotification, "send alert email")
	}
	return nil
}

// Subject summarizes the batch in one line
func Subject(b *adom.Batch) string {
	return fmt.Sprintf("gravitywatch alert: %d noteworthy DNS queries detected", len(b.Findings))
}

// Body renders the plain-text digest, one section per category
// in the order the batch presents them (triggered categories first)
func Body(b *adom.Batch) string {
	var sb strings.Builder
	sb.WriteString("gravitywatch detected the following noteworthy DNS queries:\n")

	seen := map[fdom.Category]bool{}
	var order []fdom.Category
	for _, f := range b.Findings {
		if !seen[f.Category] {
			seen[f.Category] = true
			order = append(order, f.Category)
		}
	}

	for _, cat := range order {
		findings := b.ByCategory[cat]
		fmt.Fprintf(&sb, "\n== %s (%d) ==\n", cat, len(findings))
		for _, f := range findings {
			client := f.Client
			if client == "" {
				client = "unknown"
			}
			reason := f.Reason
			if reason == "" {
				reason = "n/a"
			}
			fmt.Fprintf(&sb, "- Time: %s\n  Client: %s\n  Domain: %s\n  Source: %s\n  Reason: %s\n",
				f.QueryTS.UTC().Format("2006-01-02 15:04:05"), client, f.Domain, f.Source, reason)
		}
	}
	return sb.String()
}
