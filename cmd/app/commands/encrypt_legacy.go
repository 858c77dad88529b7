package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	logSecretsUseCase "github.com/clio-platform/clio/internal/logsecrets/usecase"
)

// RunEncryptLegacySecrets seals every log secrets value still stored as plaintext.
// Rows are processed in batches of batchSize, each inside its own transaction, so an
// interrupted run can simply be restarted.
//
// Requirements: the database must be reachable and FIELD_ENCRYPTION_KEY set.
func RunEncryptLegacySecrets(
	ctx context.Context,
	useCase logSecretsUseCase.LogSecretsUseCase,
	logger *slog.Logger,
	out io.Writer,
	batchSize int,
	format string,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be a positive number, got: %d", batchSize)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("encrypting legacy log secrets", slog.Int("batch_size", batchSize))
	start := time.Now()

	count, err := useCase.EncryptLegacy(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("failed to encrypt legacy secrets after %d row(s): %w", count, err)
	}

	logger.Info("legacy encryption completed",
		slog.Int("count", count),
		slog.Duration("duration", time.Since(start)),
	)

	if format == "json" {
		return writeJSON(out, map[string]any{
			"encrypted":  count,
			"batch_size": batchSize,
		})
	}

	_, err = fmt.Fprintf(out, "Encrypted %d legacy log secret value(s)\n", count)
	return err
}
