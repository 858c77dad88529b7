package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
	"github.com/clio-platform/clio/internal/database"
	apperrors "github.com/clio-platform/clio/internal/errors"
	logSecretsDomain "github.com/clio-platform/clio/internal/logsecrets/domain"
)

// DefaultBatchSize is the number of rows EncryptLegacy rewrites per transaction.
const DefaultBatchSize = 500

type logSecretsUseCase struct {
	txManager database.TxManager
	repo      LogSecretsRepository
	cipher    FieldCipher
	logger    *slog.Logger
}

// NewLogSecretsUseCase creates a LogSecretsUseCase.
func NewLogSecretsUseCase(
	txManager database.TxManager,
	repo LogSecretsRepository,
	cipher FieldCipher,
	logger *slog.Logger,
) LogSecretsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &logSecretsUseCase{
		txManager: txManager,
		repo:      repo,
		cipher:    cipher,
		logger:    logger,
	}
}

func (u *logSecretsUseCase) Get(ctx context.Context, logID int64) (*logSecretsDomain.LogSecrets, error) {
	col, err := u.repo.GetSecrets(ctx, logID)
	if err != nil {
		return nil, err
	}

	result := u.cipher.OpenColumn(col.Secrets)
	if result.Failed() {
		u.logger.Warn("log secrets could not be decrypted", slog.Int64("log_id", logID))
		return &logSecretsDomain.LogSecrets{LogID: logID, DecryptionFailed: true}, nil
	}

	value := result.Value
	if text, ok := value.(string); ok && result.Status == cryptoDomain.StatusPassthrough {
		value = decodeLegacy(text)
	}
	return &logSecretsDomain.LogSecrets{LogID: logID, Secrets: value}, nil
}

func (u *logSecretsUseCase) Update(
	ctx context.Context,
	logID int64,
	value any,
) (*logSecretsDomain.LogSecrets, error) {
	sealed, err := u.cipher.SealColumn(value)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to seal log secrets")
	}

	if err := u.repo.UpdateSecrets(ctx, logID, sealed); err != nil {
		return nil, err
	}
	return &logSecretsDomain.LogSecrets{LogID: logID, Secrets: value}, nil
}

func (u *logSecretsUseCase) EncryptLegacy(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var (
		total  int
		cursor int64
	)
	for {
		var (
			sealed  int
			fetched int
		)
		err := u.txManager.WithTx(ctx, func(txCtx context.Context) error {
			cols, err := u.repo.ListSecretsAfter(txCtx, cursor, batchSize)
			if err != nil {
				return err
			}
			fetched = len(cols)

			for _, col := range cols {
				cursor = col.LogID
				if u.cipher.IsEncrypted(col.Secrets.String) {
					continue
				}

				text, err := u.cipher.SealColumn(legacyPlaintext(col.Secrets.String))
				if err != nil {
					return apperrors.Wrapf(err, "failed to seal log %d", col.LogID)
				}
				if err := u.repo.UpdateSecrets(txCtx, col.LogID, text); err != nil {
					return err
				}
				sealed++
			}
			return nil
		})
		if err != nil {
			return total, err
		}

		total += sealed
		if sealed > 0 {
			u.logger.Info("legacy log secrets encrypted",
				slog.Int("batch", sealed),
				slog.Int("total", total),
				slog.Int64("last_log_id", cursor),
			)
		}
		if fetched < batchSize {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

// legacyPlaintext returns the value to seal for a legacy column: structured JSON is
// kept structured, anything else is sealed as a string.
func legacyPlaintext(text string) any {
	if looksLikeJSONDocument(text) {
		return json.RawMessage(text)
	}
	return text
}

// decodeLegacy renders a legacy plaintext column the same way it reads back after
// EncryptLegacy has sealed it.
func decodeLegacy(text string) any {
	if !looksLikeJSONDocument(text) {
		return text
	}
	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return text
	}
	return decoded
}

func looksLikeJSONDocument(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid([]byte(trimmed))
}
