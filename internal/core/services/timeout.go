package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/animerec/internal/core/domain"
)

// withTimeout runs fn under a deadline of d. When the deadline, and not the
// caller's context, ends the call, the error becomes a domain.TimeoutError.
func withTimeout[T any](ctx context.Context, op string, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	out, err := fn(callCtx)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		var zero T
		return zero, &domain.TimeoutError{Op: op, Timeout: d, Err: err}
	}
	return out, err
}
