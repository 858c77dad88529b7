// Package repository implements persistence for the secrets column of the logs table.
// The application owns only this column; the rest of the table belongs to the log
// ingestion service.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clio-platform/clio/internal/database"
	apperrors "github.com/clio-platform/clio/internal/errors"
	logSecretsDomain "github.com/clio-platform/clio/internal/logsecrets/domain"
)

// PostgreSQLLogSecretsRepository implements secrets column persistence for PostgreSQL.
type PostgreSQLLogSecretsRepository struct {
	db *sql.DB
}

// GetSecrets reads the secrets column of one log row.
func (p *PostgreSQLLogSecretsRepository) GetSecrets(
	ctx context.Context,
	logID int64,
) (*logSecretsDomain.SecretsColumn, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, secrets FROM logs WHERE id = $1`

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
func (p *PostgreSQLLogSecretsRepository) UpdateSecrets(
	ctx context.Context,
	logID int64,
	secrets sql.NullString,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE logs SET secrets = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, secrets, logID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update log secrets")
	}
	return checkRowsAffected(result)
}

// ListSecretsAfter returns up to limit rows with a non-NULL secrets column and an id
// greater than afterID, in id order. Rows are locked when called inside a transaction.
func (p *PostgreSQLLogSecretsRepository) ListSecretsAfter(
	ctx context.Context,
	afterID int64,
	limit int,
) ([]*logSecretsDomain.SecretsColumn, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, secrets FROM logs 
			  WHERE id > $1 AND secrets IS NOT NULL 
			  ORDER BY id ASC 
			  LIMIT $2 
			  FOR UPDATE`

	rows, err := querier.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list log secrets")
	}
	return scanSecretsColumns(rows)
}

// NewPostgreSQLLogSecretsRepository creates a new PostgreSQL log secrets repository.
func NewPostgreSQLLogSecretsRepository(db *sql.DB) *PostgreSQLLogSecretsRepository {
	return &PostgreSQLLogSecretsRepository{db: db}
}

func scanSecretsColumns(rows *sql.Rows) ([]*logSecretsDomain.SecretsColumn, error) {
	defer func() {
		_ = rows.Close()
	}()

	cols := make([]*logSecretsDomain.SecretsColumn, 0)
	for rows.Next() {
		var col logSecretsDomain.SecretsColumn
		if err := rows.Scan(&col.LogID, &col.Secrets); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan log secrets")
		}
		cols = append(cols, &col)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate log secrets")
	}
	return cols, nil
}

func checkRowsAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return logSecretsDomain.ErrLogNotFound
	}
	return nil
}
