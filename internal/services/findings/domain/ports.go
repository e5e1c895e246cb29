package domain

import (
	"context"

	"gravitywatch/internal/modkit/repokit"
)

// WriterPort persists findings
type WriterPort interface {
	// PersistBatch writes a batch idempotently and reports how many rows
	// were duplicates of earlier cycles
	PersistBatch(ctx context.Context, xs []Finding) (inserted []Finding, duplicates int, err error)
}

// ReaderPort serves historical findings
type ReaderPort interface {
	Query(ctx context.Context, f Filter) ([]Finding, error)
	Recent(ctx context.Context, limit int) ([]Finding, error)
}

// StorageRepo is the persistence surface bound to a Queryer
type StorageRepo interface {
	InsertBatch(ctx context.Context, xs []Finding) ([]Finding, error)
	Select(ctx context.Context, f Filter) ([]Finding, error)
	SelectRecent(ctx context.Context, limit int) ([]Finding, error)
}

// RepoBinder binds StorageRepo to a transaction or pool Queryer
type RepoBinder = repokit.Binder[StorageRepo]
