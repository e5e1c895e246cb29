package domain

import (
	"context"

	fdom "gravitywatch/internal/services/findings/domain"
)

// Backend is one classification oracle (LLM, threat intel feed)
type Backend interface {
	// ClassifyBatch returns one raw verdict per domain it recognizes
	// domains missing from the response are treated as per-domain failures
	ClassifyBatch(ctx context.Context, domains []string) ([]RawVerdict, error)

	// Source tags the findings this backend produces
	Source() fdom.Source
}

// OraclePort classifies a set of unique domains
type OraclePort interface {
	Classify(ctx context.Context, domains []string) (Result, error)
}
