package model

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryConfig controls the retry wrapper. The defaults give attempts at
// 0s, 1s and 3s cumulative delay (1s then 2s backoff, then give up).
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts int

	// InitialDelay is the delay before the second attempt. Each subsequent
	// delay doubles.
	InitialDelay time.Duration

	// Jitter is the fractional randomization applied to every delay,
	// e.g. 0.25 for ±25%.
	Jitter float64
}

// DefaultRetryConfig returns the standard retry policy: 3 attempts, 1s/2s/4s
// exponential backoff with ±25% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Jitter:       0.25,
	}
}

type retryClient struct {
	inner  Client
	cfg    RetryConfig
	logger *slog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a client so transient failures are retried with exponential
// backoff. Permanent failures and context cancellation propagate immediately.
func WithRetry(inner Client, cfg RetryConfig, logger *slog.Logger) Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retryClient{
		inner:  inner,
		cfg:    cfg,
		logger: logger.With("component", "model.retry"),
		sleep:  sleepCtx,
	}
}

func (r *retryClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	err := r.attempt(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = r.inner.Invoke(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *retryClient) InvokeStructured(ctx context.Context, req StructuredRequest) (*Selection, error) {
	var sel *Selection
	err := r.attempt(ctx, func(ctx context.Context) error {
		var callErr error
		sel, callErr = r.inner.InvokeStructured(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return sel, nil
}

func (r *retryClient) attempt(ctx context.Context, call func(ctx context.Context) error) error {
	delay := r.cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		lastErr = call(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || attempt == r.cfg.MaxAttempts {
			return lastErr
		}

		wait := jittered(delay, r.cfg.Jitter)
		r.logger.Warn("transient model failure, retrying",
			"attempt", attempt,
			"max_attempts", r.cfg.MaxAttempts,
			"delay", wait,
			"error", lastErr)
		if err := r.sleep(ctx, wait); err != nil {
			return WrapContextError("retry", err)
		}
		delay *= 2
	}
	return lastErr
}

func jittered(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	// Uniform in [d*(1-jitter), d*(1+jitter)].
	factor := 1 + jitter*(2*rand.Float64()-1)
	return time.Duration(float64(d) * factor)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
