package domain

import (
	"context"
	"time"

	"gravitywatch/internal/modkit/repokit"
)

// StatePort loads and advances the analysis cursor
type StatePort interface {
	// Load returns the cursor and whether one exists yet
	// a missing cursor is not an error; the first cycle starts from zero
	Load(ctx context.Context) (Cursor, bool, error)

	// Advance moves the cursor to at least `to`, asserting the version
	// observed at Load; a version mismatch means another cycle advanced
	// first and yields an ErrorCodeConflict
	Advance(ctx context.Context, to time.Time, expectedVersion int64) error
}

// StorageRepo is the persistence surface bound to a Queryer
type StorageRepo interface {
	Get(ctx context.Context) (Cursor, bool, error)
	InsertInitial(ctx context.Context, to time.Time) (bool, error)
	CASAdvance(ctx context.Context, to time.Time, expectedVersion int64) (bool, error)
}

// RepoBinder binds StorageRepo to a transaction or pool Queryer
type RepoBinder = repokit.Binder[StorageRepo]
