package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StoreMetrics records the health of the session store as seen by the retrier.
type StoreMetrics interface {
	// RecordRetry counts one retry of a store unit of work.
	RecordRetry(ctx context.Context, operation string)
	// RecordUnavailable counts a unit of work that exhausted its retries.
	RecordUnavailable(ctx context.Context, operation string)
}

type storeMetrics struct {
	retryCounter       metric.Int64Counter
	unavailableCounter metric.Int64Counter
}

// NewStoreMetrics creates a StoreMetrics backed by the given meter provider.
func NewStoreMetrics(meterProvider metric.MeterProvider, namespace string) (StoreMetrics, error) {
	meter := meterProvider.Meter(namespace)

	retryCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_session_store_retries_total", namespace),
		metric.WithDescription("Total number of retried session store operations"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry counter: %w", err)
	}

	unavailableCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_session_store_unavailable_total", namespace),
		metric.WithDescription("Total number of session store operations that exhausted retries"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create unavailable counter: %w", err)
	}

	return &storeMetrics{
		retryCounter:       retryCounter,
		unavailableCounter: unavailableCounter,
	}, nil
}

// RecordRetry increments the retry counter for operation.
func (s *storeMetrics) RecordRetry(ctx context.Context, operation string) {
	s.retryCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordUnavailable increments the exhausted-retries counter for operation.
func (s *storeMetrics) RecordUnavailable(ctx context.Context, operation string) {
	s.unavailableCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// NoOpStoreMetrics discards store metrics.
type NoOpStoreMetrics struct{}

// NewNoOpStoreMetrics creates a no-op StoreMetrics implementation.
func NewNoOpStoreMetrics() StoreMetrics {
	return &NoOpStoreMetrics{}
}

// RecordRetry does nothing.
func (n *NoOpStoreMetrics) RecordRetry(ctx context.Context, operation string) {}

// RecordUnavailable does nothing.
func (n *NoOpStoreMetrics) RecordUnavailable(ctx context.Context, operation string) {}
