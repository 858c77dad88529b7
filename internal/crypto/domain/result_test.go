package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecryptResult(t *testing.T) {
	t.Run("decrypted", func(t *testing.T) {
		r := Decrypted("hunter2")
		assert.False(t, r.Failed())
		assert.Equal(t, "hunter2", r.Display())
		assert.Equal(t, "decrypted", r.Status.String())
	})

	t.Run("passthrough keeps the input", func(t *testing.T) {
		r := Passthrough("legacy")
		assert.False(t, r.Failed())
		assert.Equal(t, "legacy", r.Display())
		assert.Equal(t, "passthrough", r.Status.String())
	})

	t.Run("failed renders placeholder", func(t *testing.T) {
		r := Failure(ErrDecryptionFailed)
		assert.True(t, r.Failed())
		assert.Nil(t, r.Value)
		assert.Equal(t, DecryptionFailedPlaceholder, r.Display())
		assert.ErrorIs(t, r.Reason, ErrDecryptionFailed)
	})

	t.Run("empty value is not a failure", func(t *testing.T) {
		r := Decrypted("")
		assert.False(t, r.Failed())
		assert.Equal(t, "", r.Display())
	})

	t.Run("unknown status", func(t *testing.T) {
		assert.Equal(t, "unknown", DecryptStatus(99).String())
	})
}
