// Package service implements the findings service
package service

import (
	"context"

	"gravitywatch/internal/modkit/repokit"
	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/services/findings/domain"
)

// Service implements domain.WriterPort and domain.ReaderPort
type Service struct {
	DB   repokit.TxRunner
	Bind domain.RepoBinder
}

// New constructs a findings service over the given transaction runner
func New(db repokit.TxRunner, bind domain.RepoBinder) *Service {
	if db == nil {
		panic("findings service: nil TxRunner")
	}
	if bind == nil {
		panic("findings service: nil RepoBinder")
	}
	return &Service{DB: db, Bind: bind}
}

// PersistBatch writes xs in a single transaction
// Rows already present from an earlier cycle are silently skipped and
// reported via the duplicates count, so replays converge on the same state
func (s *Service) PersistBatch(ctx context.Context, xs []domain.Finding) ([]domain.Finding, int, error) {
	if len(xs) == 0 {
		return nil, 0, nil
	}
	var inserted []domain.Finding
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		rows, err := s.Bind.Bind(q).InsertBatch(ctx, xs)
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodePersistence, "insert findings")
		}
		inserted = rows
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return inserted, len(xs) - len(inserted), nil
}

// Query returns findings matching f
func (s *Service) Query(ctx context.Context, f domain.Filter) ([]domain.Finding, error) {
	out, err := s.Bind.Bind(s.DB).Select(ctx, f)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "query findings")
	}
	return out, nil
}

// Recent returns the most recently observed findings, newest first
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Finding, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := s.Bind.Bind(s.DB).SelectRecent(ctx, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "recent findings")
	}
	return out, nil
}
