// Package repo provides the Postgres repository for cycle outcomes
package repo

import (
	"context"

	"gravitywatch/internal/modkit/repokit"
	pstrings "gravitywatch/internal/platform/strings"
	"gravitywatch/internal/services/pipeline/domain"
)

type binder struct{}

// NewPG returns a Postgres binder for domain.OutcomeRepo
func NewPG() repokit.Binder[domain.OutcomeRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.OutcomeRepo { return &pg{q: q} }

type pg struct{ q repokit.Queryer }

// Insert records one cycle outcome
func (s *pg) Insert(ctx context.Context, o domain.Outcome) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO cycle_outcomes
		(cycle_id, started_at, finished_at, stage, status,
		 fetched, unique_domains, classified, skipped, persisted, duplicates,
		 alerted, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		o.CycleID, o.StartedAt, o.FinishedAt, o.Stage, o.Status,
		o.Fetched, o.UniqueDomains, o.Classified, o.Skipped, o.Persisted, o.Duplicates,
		o.Alerted, pstrings.SQLNull(o.Err),
	)
	return err
}

// Recent returns the newest outcomes first
func (s *pg) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.q.Query(ctx, `
		SELECT cycle_id, started_at, finished_at, stage, status,
		       fetched, unique_domains, classified, skipped, persisted, duplicates,
		       alerted, COALESCE(error, '')
		FROM cycle_outcomes
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Outcome
	for rows.Next() {
		var o domain.Outcome
		if err := rows.Scan(
			&o.CycleID, &o.StartedAt, &o.FinishedAt, &o.Stage, &o.Status,
			&o.Fetched, &o.UniqueDomains, &o.Classified, &o.Skipped, &o.Persisted, &o.Duplicates,
			&o.Alerted, &o.Err,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
