// Package domain defines the log secrets column model and its errors.
package domain

import (
	"database/sql"

	"github.com/clio-platform/clio/internal/errors"
)

// ErrLogNotFound indicates no log row exists with the requested id.
var ErrLogNotFound = errors.Wrap(errors.ErrNotFound, "log not found")

// SecretsColumn is the raw secrets column of one log row as stored: envelope JSON,
// legacy plaintext, or NULL.
type SecretsColumn struct {
	LogID   int64
	Secrets sql.NullString
}

// LogSecrets is the decrypted view of a log row's secrets.
type LogSecrets struct {
	LogID int64
	// Secrets is the decrypted value, legacy plaintext, or nil.
	Secrets any
	// DecryptionFailed is set when the column held an envelope that could not be opened.
	// Secrets is nil in that case.
	DecryptionFailed bool
}
