package domain

import (
	"context"

	fdom "gravitywatch/internal/services/findings/domain"
)

// EvaluatorPort decides which findings deserve a notification
type EvaluatorPort interface {
	// Evaluate returns nil when nothing in xs is alert-worthy
	Evaluate(xs []fdom.Finding) *Batch
}

// NotifierPort delivers an alert batch
type NotifierPort interface {
	Notify(ctx context.Context, b *Batch) error
}
