// Package chlog fetches DNS query logs from a ClickHouse dnstap sink
package chlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gravitywatch/internal/platform/config"
	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/platform/store"
	"gravitywatch/internal/services/pipeline/domain"
)

// Config for the ClickHouse source
type Config struct {
	Table string
	Limit int
}

// FromConfig extracts Config from the given config.Conf
func FromConfig(cfg config.Conf) Config {
	p := cfg.Prefix("SOURCE_CHLOG_")
	return Config{
		Table: p.MayString("TABLE", "dns_queries"),
		Limit: p.MayInt("LIMIT", 10000),
	}
}

// Client implements domain.SourcePort over a ClickHouse table
type Client struct {
	ch    store.Clickhouse
	table string
	limit int
}

// New constructs a ClickHouse source client
func New(ch store.Clickhouse, cfg Config) *Client {
	if ch == nil {
		panic("chlog source: nil clickhouse seam")
	}
	table := cfg.Table
	if table == "" {
		table = "dns_queries"
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 10000
	}
	return &Client{ch: ch, table: table, limit: limit}
}

// Fetch implements domain.SourcePort
func (c *Client) Fetch(ctx context.Context, since time.Time) ([]domain.QueryRecord, error) {
	q := fmt.Sprintf(`
		SELECT ts, client, domain, qtype, status, upstream
		FROM %s
		WHERE ts > ?
		ORDER BY ts
		LIMIT %d`, c.table, c.limit)

	rows, err := c.ch.Query(ctx, q, since)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSourceUnavailable, "query dns log")
	}
	defer rows.Close()

	var out []domain.QueryRecord
	for rows.Next() {
		var r domain.QueryRecord
		if err := rows.Scan(&r.Timestamp, &r.Client, &r.Domain, &r.Type, &r.Status, &r.Upstream); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeSourceUnavailable, "scan dns log row")
		}
		if r.Domain == "" || r.Timestamp.IsZero() {
			continue
		}
		r.Domain = strings.ToLower(r.Domain)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSourceUnavailable, "read dns log")
	}
	return out, nil
}
