// Package retry wraps exponential backoff with the project's error taxonomy
package retry

import (
	"context"
	"time"

	perr "gravitywatch/internal/platform/errors"
	"gravitywatch/internal/platform/logger"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry loop. Zero values pick the defaults below
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultPolicy matches the oracle call budget: 3 attempts, 1s start, 30s cap
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = d.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = d.MaxInterval
	}
	if p.Multiplier <= 1 {
		p.Multiplier = d.Multiplier
	}
	return p
}

// Do runs op, retrying transient failures per the policy.
// Non-retryable errors (per perr.Retryable) stop the loop immediately.
// The last error is returned when attempts are exhausted
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	p = p.withDefaults()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval
	bo.Multiplier = p.Multiplier
	bo.MaxElapsedTime = 0 // attempts bound the loop, not wall time

	wrapped := func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !perr.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	attempts := backoff.WithMaxRetries(backoff.WithContext(bo, ctx), uint64(p.MaxAttempts-1))

	return backoff.RetryNotify(wrapped, attempts, func(err error, next time.Duration) {
		logger.C(ctx).Warn().Err(err).Dur("next_in", next).Msg("transient failure, retrying")
	})
}
