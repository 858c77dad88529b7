package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clio-platform/clio/internal/errors"
)

func TestIdentity_Validate(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		wantErr  bool
	}{
		{name: "valid", identity: Identity{Username: "alice", Role: "operator"}},
		{name: "valid without role", identity: Identity{Username: "bob@corp.local"}},
		{name: "missing username", identity: Identity{Role: "admin"}, wantErr: true},
		{name: "username with colon", identity: Identity{Username: "a:b"}, wantErr: true},
		{name: "username with glob", identity: Identity{Username: "a*"}, wantErr: true},
		{name: "role with whitespace", identity: Identity{Username: "alice", Role: " admin"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.identity.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSessionData_JSON(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	data := SessionData{
		Username:         "alice",
		Role:             "admin",
		CreatedAt:        created,
		ServerInstanceID: "backend-a",
	}

	b, err := json.Marshal(data)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "alice", raw["username"])
	assert.Equal(t, "backend-a", raw["serverInstanceId"])
	assert.NotContains(t, raw, "regeneratedAt")

	regenerated := created.Add(time.Minute)
	data.RegeneratedAt = &regenerated
	b, err = json.Marshal(data)
	require.NoError(t, err)

	var decoded SessionData
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.NotNil(t, decoded.RegeneratedAt)
	assert.True(t, regenerated.Equal(*decoded.RegeneratedAt))
	assert.Equal(t, Identity{Username: "alice", Role: "admin"}, decoded.Identity())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "session:tok", TokenKey("tok"))
	assert.Equal(t, "sessionData:id", DataKey("id"))
	assert.Equal(t, "user:alice:sessions", UserSessionsKey("alice"))
	assert.Equal(t, "sessionRegenerated:id", TombstoneKey("id"))
	assert.Equal(t, []string{"session:*", "sessionData:*", "user:*:sessions", "sessionRegenerated:*"}, KeyFamilies)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", ShortID("0123abcdef456789"))
	assert.Equal(t, "abc", ShortID("abc"))
}

func TestErrors(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidSession, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, ErrSessionSuperseded, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, ErrStoreUnavailable, apperrors.ErrUnavailable)
	assert.NotErrorIs(t, ErrSessionSuperseded, ErrInvalidSession)
}
