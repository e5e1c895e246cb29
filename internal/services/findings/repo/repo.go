// Package repo provides the Postgres repository for findings
package repo

import (
	"context"
	"fmt"
	"strings"

	"gravitywatch/internal/modkit/repokit"
	pstrings "gravitywatch/internal/platform/strings"
	"gravitywatch/internal/services/findings/domain"
)

// binder implements repokit.Binder[domain.StorageRepo]
type binder struct{}

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.StorageRepo { return &pg{q: q} }

type pg struct{ q repokit.Queryer }

// InsertBatch writes findings in one multi-row statement; duplicate rows
// (same domain, query_ts, category, source) are silently skipped and the
// RETURNING clause reports only what was actually inserted
func (s *pg) InsertBatch(ctx context.Context, xs []domain.Finding) ([]domain.Finding, error) {
	if len(xs) == 0 {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO findings
		(query_ts, client, domain, category, reason, source)
		VALUES `)
	args := make([]any, 0, len(xs)*6)
	for i, f := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*6 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d)", base, base+1, base+2, base+3, base+4, base+5)
		args = append(args, f.QueryTS, pstrings.SQLNull(f.Client), f.Domain, f.Category, pstrings.SQLNull(f.Reason), f.Source)
	}
	sb.WriteString(` ON CONFLICT (domain, query_ts, category, source) DO NOTHING
		RETURNING id, query_ts, COALESCE(client, ''), domain, category, COALESCE(reason, ''), source, created_at`)

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFindings(rows)
}

// Select returns findings matching f, keyset-ordered by (query_ts, id)
func (s *pg) Select(ctx context.Context, f domain.Filter) ([]domain.Finding, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, query_ts, COALESCE(client, ''), domain, category, COALESCE(reason, ''), source, created_at
		FROM findings
		WHERE 1=1`)
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Domain != "" {
		fmt.Fprintf(&sb, " AND domain = %s", arg(f.Domain))
	}
	if f.Category != "" {
		fmt.Fprintf(&sb, " AND category = %s", arg(f.Category))
	}
	if f.Source != "" {
		fmt.Fprintf(&sb, " AND source = %s", arg(f.Source))
	}
	if !f.Since.IsZero() {
		fmt.Fprintf(&sb, " AND query_ts >= %s", arg(f.Since))
	}
	if !f.Until.IsZero() {
		fmt.Fprintf(&sb, " AND query_ts < %s", arg(f.Until))
	}
	if !f.AfterTS.IsZero() || f.AfterID > 0 {
		fmt.Fprintf(&sb, " AND (query_ts, id) > (%s, %s)", arg(f.AfterTS), arg(f.AfterID))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	fmt.Fprintf(&sb, " ORDER BY query_ts, id LIMIT %s", arg(limit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFindings(rows)
}

// SelectRecent returns the newest findings by query timestamp
func (s *pg) SelectRecent(ctx context.Context, limit int) ([]domain.Finding, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, query_ts, COALESCE(client, ''), domain, category, COALESCE(reason, ''), source, created_at
		FROM findings
		ORDER BY query_ts DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFindings(rows)
}

func scanFindings(rows repokit.Rows) ([]domain.Finding, error) {
	var out []domain.Finding
	for rows.Next() {
		var x domain.Finding
		if err := rows.Scan(&x.ID, &x.QueryTS, &x.Client, &x.Domain, &x.Category, &x.Reason, &x.Source, &x.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}
