package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
	logSecretsDomain "github.com/clio-platform/clio/internal/logsecrets/domain"
)

func decodeRequest(t *testing.T, body string) *UpdateLogSecretsRequest {
	t.Helper()
	var req UpdateLogSecretsRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestUpdateLogSecretsRequest_Validate(t *testing.T) {
	t.Run("missing secrets key", func(t *testing.T) {
		err := decodeRequest(t, `{}`).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secrets is required")
	})

	t.Run("explicit null is valid", func(t *testing.T) {
		assert.NoError(t, decodeRequest(t, `{"secrets":null}`).Validate())
	})

	t.Run("oversized payload", func(t *testing.T) {
		big := `{"secrets":"` + strings.Repeat("a", MaxSecretsSize) + `"}`
		assert.Error(t, decodeRequest(t, big).Validate())
	})
}

func TestUpdateLogSecretsRequest_Value(t *testing.T) {
	tests := []struct {
		name string
		body string
		want any
	}{
		{name: "null", body: `{"secrets":null}`, want: nil},
		{name: "string", body: `{"secrets":"admin:hunter2"}`, want: "admin:hunter2"},
		{name: "object", body: `{"secrets":{"token":"abc"}}`, want: json.RawMessage(`{"token":"abc"}`)},
		{name: "number", body: `{"secrets":42}`, want: json.RawMessage(`42`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeRequest(t, tt.body).Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapLogSecretsToResponse(t *testing.T) {
	ok := MapLogSecretsToResponse(&logSecretsDomain.LogSecrets{LogID: 3, Secrets: "x"})
	assert.Equal(t, LogSecretsResponse{ID: 3, Secrets: "x"}, ok)

	failed := MapLogSecretsToResponse(&logSecretsDomain.LogSecrets{LogID: 3, DecryptionFailed: true})
	assert.Equal(t, cryptoDomain.DecryptionFailedPlaceholder, failed.Secrets)
	assert.True(t, failed.DecryptionFailed)
}
