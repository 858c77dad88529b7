package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clio-platform/clio/internal/database"
	apperrors "github.com/clio-platform/clio/internal/errors"
	logSecretsDomain "github.com/clio-platform/clio/internal/logsecrets/domain"
)

// MySQLLogSecretsRepository implements secrets column persistence for MySQL.
type MySQLLogSecretsRepository struct {
	db *sql.DB
}

// GetSecrets reads the secrets column of one log row.
func (m *MySQLLogSecretsRepository) GetSecrets(
	ctx context.Context,
	logID int64,
) (*logSecretsDomain.SecretsColumn, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, secrets FROM logs WHERE id = ?`

	var col logSecretsDomain.SecretsColumn
	err := querier.QueryRowContext(ctx, query, logID).Scan(&col.LogID, &col.Secrets)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, logSecretsDomain.ErrLogNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get log secrets")
	}

	return &col, nil
}

// UpdateSecrets replaces the secrets column of one log row.
//
// MySQL reports zero affected rows when the new value equals the old one, so a
// missing row is confirmed with a second lookup.
func (m *MySQLLogSecretsRepository) UpdateSecrets(
	ctx context.Context,
	logID int64,
	secrets sql.NullString,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE logs SET secrets = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, secrets, logID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update log secrets")
	}

	if err := checkRowsAffected(result); err != nil {
		if !errors.Is(err, logSecretsDomain.ErrLogNotFound) {
			return err
		}
		_, getErr := m.GetSecrets(ctx, logID)
		return getErr
	}
	return nil
}

// ListSecretsAfter returns up to limit rows with a non-NULL secrets column and an id
// greater than afterID, in id order. Rows are locked when called inside a transaction.
func (m *MySQLLogSecretsRepository) ListSecretsAfter(
	ctx context.Context,
	afterID int64,
	limit int,
) ([]*logSecretsDomain.SecretsColumn, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, secrets FROM logs 
			  WHERE id > ? AND secrets IS NOT NULL 
			  ORDER BY id ASC 
			  LIMIT ? 
			  FOR UPDATE`

	rows, err := querier.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list log secrets")
	}
	return scanSecretsColumns(rows)
}

// NewMySQLLogSecretsRepository creates a new MySQL log secrets repository.
func NewMySQLLogSecretsRepository(db *sql.DB) *MySQLLogSecretsRepository {
	return &MySQLLogSecretsRepository{db: db}
}
