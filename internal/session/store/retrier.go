package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/clio-platform/clio/internal/metrics"
	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
)

// RetryConfig is the retry policy for one unit of work.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
	// MaxInterval caps the backoff delay.
	MaxInterval time.Duration
}

// BackoffRetrier retries units of work with exponential backoff and jitter.
type BackoffRetrier struct {
	cfg     RetryConfig
	logger  *slog.Logger
	metrics metrics.StoreMetrics
}

// RetrierOption configures a BackoffRetrier.
type RetrierOption func(*BackoffRetrier)

// WithStoreMetrics counts retries and exhausted units.
func WithStoreMetrics(m metrics.StoreMetrics) RetrierOption {
	return func(b *BackoffRetrier) {
		b.metrics = m
	}
}

// NewBackoffRetrier creates a Retrier with the given policy.
func NewBackoffRetrier(cfg RetryConfig, logger *slog.Logger, opts ...RetrierOption) *BackoffRetrier {
	b := &BackoffRetrier{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewNoOpStoreMetrics(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Permanent marks err as not retryable. Do returns it unchanged instead of
// ErrStoreUnavailable.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs fn as one unit. Any error from fn retries the whole unit, so callers
// must write every key of the unit inside fn.
func (b *BackoffRetrier) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = b.cfg.InitialInterval
	policy.MaxInterval = b.cfg.MaxInterval
	policy.MaxElapsedTime = 0

	maxRetries := b.cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var permanent bool
	attempt := 0
	op := func() error {
		attempt++
		err := fn(ctx)
		var permErr *backoff.PermanentError
		if errors.As(err, &permErr) {
			permanent = true
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		b.metrics.RecordRetry(ctx, operation)
		b.logger.Warn("session store operation failed, retrying",
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)
	}

	err := backoff.RetryNotify(
		op,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx),
		notify,
	)
	if err == nil {
		return nil
	}
	if permanent {
		return err
	}

	b.metrics.RecordUnavailable(ctx, operation)
	b.logger.Error("session store operation exhausted retries",
		slog.String("operation", operation),
		slog.Int("attempts", attempt),
		slog.Any("error", err),
	)
	return fmt.Errorf("%w: %s: %v", sessionDomain.ErrStoreUnavailable, operation, err)
}
