package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/clio-platform/clio/internal/errors"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		shouldErr bool
	}{
		{name: "simple", username: "alice", shouldErr: false},
		{name: "email style", username: "alice.smith@redteam.local", shouldErr: false},
		{name: "dash and underscore", username: "op_lead-01", shouldErr: false},
		{name: "colon breaks key layout", username: "alice:admin", shouldErr: true},
		{name: "glob star", username: "al*", shouldErr: true},
		{name: "glob bracket", username: "al[ic]e", shouldErr: true},
		{name: "space", username: "alice smith", shouldErr: true},
		{
			name:      "too long",
			username:  "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.username, Username)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, validation.Validate("admin", NoWhitespace))
	assert.Error(t, validation.Validate(" admin", NoWhitespace))
	assert.Error(t, validation.Validate("admin\n", NoWhitespace))
}

func TestBase64(t *testing.T) {
	assert.NoError(t, validation.Validate("c2VjcmV0LWtleQ==", Base64))
	assert.NoError(t, validation.Validate("c2VjcmV0LWtleQ", Base64))
	assert.NoError(t, validation.Validate("", Base64))
	assert.Error(t, validation.Validate("not base64!!", Base64))
}

func TestWrapValidationError(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("username: must not be blank"))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "username: must not be blank")
}
