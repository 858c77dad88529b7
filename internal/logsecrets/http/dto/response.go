package dto

import (
	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
	logSecretsDomain "github.com/clio-platform/clio/internal/logsecrets/domain"
)

// LogSecretsResponse represents the secrets of a log in API responses.
type LogSecretsResponse struct {
	ID               int64 `json:"id"`
	Secrets          any   `json:"secrets"`
	DecryptionFailed bool  `json:"decryptionFailed"`
}

// MapLogSecretsToResponse converts log secrets to an API response. A column that
// failed to decrypt renders the placeholder.
func MapLogSecretsToResponse(secrets *logSecretsDomain.LogSecrets) LogSecretsResponse {
	value := secrets.Secrets
	if secrets.DecryptionFailed {
		value = cryptoDomain.DecryptionFailedPlaceholder
	}
	return LogSecretsResponse{
		ID:               secrets.LogID,
		Secrets:          value,
		DecryptionFailed: secrets.DecryptionFailed,
	}
}
