package ingest

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

// RetryPolicy is a constant backoff with a ceiling on attempts after the first.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Retrying retries transient failures of next. Any other error is returned at once.
type Retrying struct {
	next    Submitter
	policy  RetryPolicy
	onRetry func(err error, wait time.Duration)
}

// NewRetrying wraps next. onRetry may be nil.
func NewRetrying(next Submitter, policy RetryPolicy, onRetry func(err error, wait time.Duration)) *Retrying {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.Backoff < 0 {
		policy.Backoff = 0
	}
	return &Retrying{next: next, policy: policy, onRetry: onRetry}
}

// Submit returns the last transient error once retries are exhausted, or
// ctx.Err() when the context ends while waiting.
func (r *Retrying) Submit(ctx context.Context, sess models.Session, rd models.TelemetryReading) error {
	op := func() error {
		err := r.next.Submit(ctx, sess, rd)
		if err == nil || apperr.IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.policy.Backoff), uint64(r.policy.MaxRetries)),
		ctx,
	)
	return backoff.RetryNotify(op, b, r.onRetry)
}
