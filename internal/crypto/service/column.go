package service

import (
	"database/sql"
	"fmt"

	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
)

// SealColumn encrypts value into envelope JSON text for a nullable text column.
// A nil value maps to SQL NULL.
func (f *FieldEncryptor) SealColumn(value any) (sql.NullString, error) {
	env, err := f.Encrypt(value)
	if err != nil {
		return sql.NullString{}, err
	}
	if env == nil {
		return sql.NullString{}, nil
	}

	text, err := env.MarshalText()
	if err != nil {
		return sql.NullString{}, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}
	return sql.NullString{String: text, Valid: true}, nil
}

// OpenColumn decrypts a column read back from the database. NULL passes through as nil
// and legacy plaintext passes through as the stored string.
func (f *FieldEncryptor) OpenColumn(col sql.NullString) cryptoDomain.DecryptResult {
	if !col.Valid {
		return cryptoDomain.Passthrough(nil)
	}
	return f.Decrypt(col.String)
}
