// Package usecase implements reads and writes of the encrypted secrets column of logs.
package usecase

import (
	"context"
	"database/sql"

	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
	logSecretsDomain "github.com/clio-platform/clio/internal/logsecrets/domain"
)

// LogSecretsRepository defines persistence of the secrets column.
type LogSecretsRepository interface {
	GetSecrets(ctx context.Context, logID int64) (*logSecretsDomain.SecretsColumn, error)
	UpdateSecrets(ctx context.Context, logID int64, secrets sql.NullString) error
	ListSecretsAfter(ctx context.Context, afterID int64, limit int) ([]*logSecretsDomain.SecretsColumn, error)
}

// FieldCipher seals and opens column values. It is satisfied by the field encryptor.
type FieldCipher interface {
	SealColumn(value any) (sql.NullString, error)
	OpenColumn(col sql.NullString) cryptoDomain.DecryptResult
	IsEncrypted(value any) bool
}

// LogSecretsUseCase defines the business logic for the secrets column.
type LogSecretsUseCase interface {
	// Get reads and decrypts the secrets of a log. A column that fails to decrypt is
	// reported through LogSecrets.DecryptionFailed rather than an error.
	Get(ctx context.Context, logID int64) (*logSecretsDomain.LogSecrets, error)
	// Update stores value as a brand-new envelope. A nil value clears the column.
	Update(ctx context.Context, logID int64, value any) (*logSecretsDomain.LogSecrets, error)
	// EncryptLegacy seals every plaintext column in batches and returns how many rows
	// were rewritten.
	EncryptLegacy(ctx context.Context, batchSize int) (int, error)
}
