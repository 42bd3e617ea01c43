package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
	"github.com/custodia-labs/animerec/internal/logger"
)

// Ensure ResilientLLM implements the interface.
var _ driven.LLMService = (*ResilientLLM)(nil)

// Resilience defaults.
const (
	DefaultBackoff          = 500 * time.Millisecond
	DefaultFailureThreshold = 5
	DefaultOpenTimeout      = 30 * time.Second
)

// ResilienceConfig configures ResilientLLM.
type ResilienceConfig struct {
	// Timeout bounds each completion attempt (default: domain.DefaultCompletionTimeout).
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after a retryable failure.
	MaxRetries int

	// Backoff is the base delay between attempts; attempt n waits n*Backoff.
	Backoff time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// ResilientLLM bounds every completion with a timeout, retries retryable
// failures and stops calling a provider that keeps failing.
type ResilientLLM struct {
	inner driven.LLMService
	cb    *gobreaker.CircuitBreaker[string]
	cfg   ResilienceConfig
}

// NewResilientLLM wraps inner.
func NewResilientLLM(inner driven.LLMService, cfg ResilienceConfig) *ResilientLLM {
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultCompletionTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultOpenTimeout
	}

	threshold := cfg.FailureThreshold
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm:" + inner.ModelName(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("completion circuit breaker state changed")
		},
	})

	return &ResilientLLM{inner: inner, cb: cb, cfg: cfg}
}

// Generate calls the wrapped service, retrying timeouts and other retryable errors.
func (r *ResilientLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("completion attempt %d/%d after: %v", attempt+1, r.cfg.MaxRetries+1, lastErr)
			if err := sleep(ctx, time.Duration(attempt)*r.cfg.Backoff); err != nil {
				return "", err
			}
		}

		out, err := r.cb.Execute(func() (string, error) {
			return r.attempt(ctx, prompt, opts)
		})
		if err == nil {
			return out, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		if !domain.IsRetryable(err) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (r *ResilientLLM) attempt(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	out, err := r.inner.Generate(attemptCtx, prompt, opts)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return "", &domain.TimeoutError{Op: "completion", Timeout: r.cfg.Timeout, Err: err}
	}
	return out, err
}

// State returns the breaker state.
func (r *ResilientLLM) State() gobreaker.State {
	return r.cb.State()
}

// ModelName returns the wrapped model name.
func (r *ResilientLLM) ModelName() string {
	return r.inner.ModelName()
}

// Ping bypasses the breaker.
func (r *ResilientLLM) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close releases the wrapped service.
func (r *ResilientLLM) Close() error {
	return r.inner.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
