// Package repo provides the Postgres repository for the analysis cursor
package repo

import (
	"context"
	"time"

	"gravitywatch/internal/modkit/repokit"
	"gravitywatch/internal/services/cursor/domain"
)

type binder struct{}

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.StorageRepo { return &pg{q: q} }

type pg struct{ q repokit.Queryer }

// Get returns the cursor row; absent means no cycle has completed yet
func (s *pg) Get(ctx context.Context) (domain.Cursor, bool, error) {
	rows, err := s.q.Query(ctx, `
		SELECT last_processed, version
		FROM analysis_cursor
		WHERE id = 1`)
	if err != nil {
		return domain.Cursor{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.Cursor{}, false, rows.Err()
	}
	var c domain.Cursor
	if err := rows.Scan(&c.LastProcessed, &c.Version); err != nil {
		return domain.Cursor{}, false, err
	}
	return c, true, rows.Err()
}

// InsertInitial creates the singleton row for the very first advance
// false means another writer created it concurrently
func (s *pg) InsertInitial(ctx context.Context, to time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO analysis_cursor (id, last_processed, version)
		VALUES (1, $1, 1)
		ON CONFLICT (id) DO NOTHING`, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CASAdvance moves the cursor forward only when the version still matches
// GREATEST keeps the cursor monotonic even if batches land out of order
func (s *pg) CASAdvance(ctx context.Context, to time.Time, expectedVersion int64) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE analysis_cursor
		SET last_processed = GREATEST(last_processed, $1),
		    version = version + 1
		WHERE id = 1 AND version = $2`, to, expectedVersion)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
