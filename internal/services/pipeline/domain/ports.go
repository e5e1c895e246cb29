package domain

import (
	"context"
	"time"

	"gravitywatch/internal/modkit/repokit"
)

// SourcePort fetches DNS query records newer than a boundary
type SourcePort interface {
	// Fetch returns records with Timestamp strictly after since
	// an unreachable source yields ErrorCodeSourceUnavailable
	Fetch(ctx context.Context, since time.Time) ([]QueryRecord, error)
}

// RunnerPort runs one analysis cycle
type RunnerPort interface {
	Run(ctx context.Context) (Outcome, error)
}

// OutcomeRepo persists and lists cycle outcomes
type OutcomeRepo interface {
	Insert(ctx context.Context, o Outcome) error
	Recent(ctx context.Context, limit int) ([]Outcome, error)
}

// OutcomeBinder binds OutcomeRepo to a transaction or pool Queryer
type OutcomeBinder = repokit.Binder[OutcomeRepo]
