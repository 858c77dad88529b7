package usecase

import (
	"context"
	"time"

	logSecretsDomain "github.com/clio-platform/clio/internal/logsecrets/domain"
	"github.com/clio-platform/clio/internal/metrics"
)

// logSecretsUseCaseWithMetrics decorates LogSecretsUseCase with metrics instrumentation.
type logSecretsUseCaseWithMetrics struct {
	next    LogSecretsUseCase
	metrics metrics.BusinessMetrics
}

// NewLogSecretsUseCaseWithMetrics wraps a LogSecretsUseCase with metrics recording.
func NewLogSecretsUseCaseWithMetrics(useCase LogSecretsUseCase, m metrics.BusinessMetrics) LogSecretsUseCase {
	return &logSecretsUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (l *logSecretsUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, status string) {
	l.metrics.RecordOperation(ctx, "log_secrets", operation, status)
	l.metrics.RecordDuration(ctx, "log_secrets", operation, time.Since(start), status)
}

// Get records metrics for reading log secrets. Decryption failures get their own status
// so tampering or key mismatches are visible without reading logs.
func (l *logSecretsUseCaseWithMetrics) Get(ctx context.Context, logID int64) (*logSecretsDomain.LogSecrets, error) {
	start := time.Now()
	result, err := l.next.Get(ctx, logID)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case result.DecryptionFailed:
		status = "decryption_failed"
	}
	l.record(ctx, "log_secrets_get", start, status)
	return result, err
}

// Update records metrics for writing log secrets.
func (l *logSecretsUseCaseWithMetrics) Update(
	ctx context.Context,
	logID int64,
	value any,
) (*logSecretsDomain.LogSecrets, error) {
	start := time.Now()
	result, err := l.next.Update(ctx, logID, value)

	status := "success"
	if err != nil {
		status = "error"
	}
	l.record(ctx, "log_secrets_update", start, status)
	return result, err
}

// EncryptLegacy records metrics for the legacy encryption pass.
func (l *logSecretsUseCaseWithMetrics) EncryptLegacy(ctx context.Context, batchSize int) (int, error) {
	start := time.Now()
	count, err := l.next.EncryptLegacy(ctx, batchSize)

	status := "success"
	if err != nil {
		status = "error"
	}
	l.record(ctx, "log_secrets_encrypt_legacy", start, status)
	return count, err
}
