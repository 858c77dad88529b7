// Package dto provides data transfer objects for the log secrets endpoints.
package dto

import (
	"bytes"
	"encoding/json"

	validation "github.com/jellydator/validation"
)

// MaxSecretsSize bounds the serialized secrets payload.
const MaxSecretsSize = 1 << 20

// UpdateLogSecretsRequest contains the new secrets of a log. The body must carry the
// secrets key; an explicit null clears the column.
type UpdateLogSecretsRequest struct {
	Secrets json.RawMessage `json:"secrets"`
}

// Validate checks if the update request is valid.
func (r *UpdateLogSecretsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Secrets,
			validation.Required.Error("secrets is required (use null to clear)"),
			validation.Length(1, MaxSecretsSize),
		),
	)
}

// Value returns the value to encrypt: nil for null, a string for a JSON string, and the
// raw JSON document otherwise.
func (r *UpdateLogSecretsRequest) Value() (any, error) {
	raw := bytes.TrimSpace(r.Secrets)
	switch {
	case bytes.Equal(raw, []byte("null")):
		return nil, nil
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return json.RawMessage(raw), nil
	}
}
