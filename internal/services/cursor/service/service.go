// Package service implements the cursor service
package service

import (
	"context"
	"time"

	"gravitywatch/internal/modkit/repokit"
	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/services/cursor/domain"
)

// Service implements domain.StatePort
type Service struct {
	DB   repokit.TxRunner
	Bind domain.RepoBinder
}

// New constructs a cursor service over the given transaction runner
func New(db repokit.TxRunner, bind domain.RepoBinder) *Service {
	if db == nil {
		panic("cursor service: nil TxRunner")
	}
	if bind == nil {
		panic("cursor service: nil RepoBinder")
	}
	return &Service{DB: db, Bind: bind}
}

// Load implements domain.StatePort
func (s *Service) Load(ctx context.Context) (domain.Cursor, bool, error) {
	c, ok, err := s.Bind.Bind(s.DB).Get(ctx)
	if err != nil {
		return domain.Cursor{}, false, perr.Wrap(err, perr.ErrorCodeDB, "load cursor")
	}
	return c, ok, nil
}

// Advance implements domain.StatePort
// expectedVersion 0 means no cursor was loaded and the row must not exist yet
func (s *Service) Advance(ctx context.Context, to time.Time, expectedVersion int64) error {
	return repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		r := s.Bind.Bind(q)

		if expectedVersion == 0 {
			ok, err := r.InsertInitial(ctx, to)
			if err != nil {
				return perr.Wrap(err, perr.ErrorCodeStateWrite, "initialize cursor")
			}
			if !ok {
				return perr.Conflictf("cursor created by a concurrent cycle")
			}
			return nil
		}

		ok, err := r.CASAdvance(ctx, to, expectedVersion)
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeStateWrite, "advance cursor")
		}
		if !ok {
			return perr.Conflictf("cursor version %d no longer current", expectedVersion)
		}
		return nil
	})
}
